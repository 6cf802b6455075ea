// Package league holds the static NHL structure (teams, divisions,
// conferences) and the season schedule model. Everything here is read-only
// reference data for the simulation packages.
package league

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TeamMap resolves the abbreviations used by the stats sites to full team
// names. Only edit when the NHL adds or relocates a franchise.
var TeamMap = map[string]string{
	"ANA": "Anaheim Ducks", "BOS": "Boston Bruins", "BUF": "Buffalo Sabres",
	"CGY": "Calgary Flames", "CAR": "Carolina Hurricanes", "CHI": "Chicago Blackhawks",
	"COL": "Colorado Avalanche", "CBJ": "Columbus Blue Jackets", "DAL": "Dallas Stars",
	"DET": "Detroit Red Wings", "EDM": "Edmonton Oilers", "FLA": "Florida Panthers",
	"LAK": "Los Angeles Kings", "L.A": "Los Angeles Kings",
	"MIN": "Minnesota Wild", "MTL": "Montreal Canadiens", "NSH": "Nashville Predators",
	"NJD": "New Jersey Devils", "N.J": "New Jersey Devils",
	"NYI": "New York Islanders", "NYR": "New York Rangers", "OTT": "Ottawa Senators",
	"PHI": "Philadelphia Flyers", "PIT": "Pittsburgh Penguins",
	"SJS": "San Jose Sharks", "S.J": "San Jose Sharks",
	"SEA": "Seattle Kraken", "STL": "St. Louis Blues",
	"TBL": "Tampa Bay Lightning", "T.B": "Tampa Bay Lightning",
	"TOR": "Toronto Maple Leafs", "UTA": "Utah Hockey Club",
	"VAN": "Vancouver Canucks", "VGK": "Vegas Golden Knights",
	"WSH": "Washington Capitals", "WPG": "Winnipeg Jets",
}

// Structure describes division and conference membership. It is built once
// (Default or a test fixture) and passed into the selector/bracket explicitly
// so a truncated league remains expressible in tests.
type Structure struct {
	Divisions   map[string][]string // division -> teams
	Conferences map[string][]string // conference -> divisions
}

// Default is the current 32-team, 4-division, 2-conference NHL.
func Default() *Structure {
	return &Structure{
		Divisions: map[string][]string{
			"Atlantic": {"Boston Bruins", "Buffalo Sabres", "Detroit Red Wings", "Florida Panthers",
				"Montreal Canadiens", "Ottawa Senators", "Tampa Bay Lightning", "Toronto Maple Leafs"},
			"Metropolitan": {"Carolina Hurricanes", "Columbus Blue Jackets", "New Jersey Devils", "New York Islanders",
				"New York Rangers", "Philadelphia Flyers", "Pittsburgh Penguins", "Washington Capitals"},
			"Central": {"Chicago Blackhawks", "Colorado Avalanche", "Dallas Stars", "Minnesota Wild",
				"Nashville Predators", "St. Louis Blues", "Utah Hockey Club", "Winnipeg Jets"},
			"Pacific": {"Anaheim Ducks", "Calgary Flames", "Edmonton Oilers", "Los Angeles Kings",
				"San Jose Sharks", "Seattle Kraken", "Vancouver Canucks", "Vegas Golden Knights"},
		},
		Conferences: map[string][]string{
			"Eastern": {"Atlantic", "Metropolitan"},
			"Western": {"Central", "Pacific"},
		},
	}
}

// ConferenceNames returns conference names in deterministic (sorted) order.
func (s *Structure) ConferenceNames() []string {
	names := make([]string, 0, len(s.Conferences))
	for name := range s.Conferences {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConferenceTeams returns every team belonging to the named conference.
func (s *Structure) ConferenceTeams(conference string) []string {
	var teams []string
	for _, div := range s.Conferences[conference] {
		teams = append(teams, s.Divisions[div]...)
	}
	return teams
}

// Teams returns every team in the league, sorted.
func (s *Structure) Teams() []string {
	var teams []string
	for _, divTeams := range s.Divisions {
		teams = append(teams, divTeams...)
	}
	sort.Strings(teams)
	return teams
}

// ConferenceOf returns the conference a team plays in, or "" if unknown.
func (s *Structure) ConferenceOf(team string) string {
	for conf, divs := range s.Conferences {
		for _, div := range divs {
			for _, t := range s.Divisions[div] {
				if t == team {
					return conf
				}
			}
		}
	}
	return ""
}

// ResolveTeam maps a raw team cell from a stats site to a canonical name.
// Sites disagree on abbreviations ("L.A" vs "LAK") and accents ("Montréal"),
// so the input is diacritic-stripped before lookup. Unknown names pass
// through unchanged.
func ResolveTeam(raw string) string {
	clean := collapseWhitespace(stripDiacritics(strings.TrimSpace(raw)))
	if clean == "" {
		return ""
	}
	if full, ok := TeamMap[strings.ToUpper(clean)]; ok {
		return full
	}
	// Hockey-Reference spells names out in full; match case-insensitively.
	lower := strings.ToLower(clean)
	for _, full := range TeamMap {
		if strings.ToLower(full) == lower {
			return full
		}
	}
	return clean
}

func stripDiacritics(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) { // Mn = Mark, Nonspacing (combining accents)
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
