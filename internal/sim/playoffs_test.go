package sim

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/charleschow/nhl-montecarlo/internal/league"
)

// scriptedSim decides every game with a fixed rule instead of sampling.
type scriptedSim struct {
	games  int
	winner func(home, away string) string
}

func (s *scriptedSim) SimulateGame(home, away string, _ *rand.Rand) GameResult {
	s.games++
	res := GameResult{Home: home, Away: away}
	if s.winner(home, away) == home {
		res.HomeGoals, res.HomePoints = 1, 2
	} else {
		res.AwayGoals, res.AwayPoints = 1, 2
	}
	return res
}

func rankedRows(teams ...string) []*Row {
	rows := make([]*Row, len(teams))
	for i, t := range teams {
		rows[i] = &Row{Team: t}
	}
	return rows
}

// With home winning every game, the 2-2-1-1-1 rotation forces a 4-3 series
// for the home-ice holder: H, H, L, L, H, L, H.
func TestPlaySeriesHomeIcePattern(t *testing.T) {
	script := &scriptedSim{winner: func(home, _ string) string { return home }}
	b := NewBracket(script, rankedRows("H", "L"))

	res := b.PlaySeries("H", "L", nil)
	if res.Winner != "H" || res.LoserWins != 3 {
		t.Errorf("home-wins-all series = %+v, want H in 7 over L", res)
	}
	if res.GamesPlayed != 7 || script.games != 7 {
		t.Errorf("games played = %d (simulated %d), want 7", res.GamesPlayed, script.games)
	}
}

func TestPlaySeriesStopsAtClinch(t *testing.T) {
	script := &scriptedSim{winner: func(home, away string) string {
		if home == "H" || away == "H" {
			return "H"
		}
		return home
	}}
	b := NewBracket(script, rankedRows("H", "L"))

	res := b.PlaySeries("H", "L", nil)
	if res.Winner != "H" || res.GamesPlayed != 4 || res.LoserWins != 0 {
		t.Errorf("sweep = %+v, want H in 4", res)
	}
	if script.games != 4 {
		t.Errorf("simulated %d games after a 4-0 clinch, want exactly 4", script.games)
	}
}

func TestPlaySeriesInvariants(t *testing.T) {
	s := NewSimulator(testParams(), fixedRatings{})
	b := NewBracket(s, rankedRows("A", "B"))
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 2000; i++ {
		res := b.PlaySeries("A", "B", rng)
		if res.WinnerWins != 4 {
			t.Fatalf("winner wins = %d, want 4", res.WinnerWins)
		}
		if res.LoserWins < 0 || res.LoserWins > 3 {
			t.Fatalf("loser wins = %d, want 0..3", res.LoserWins)
		}
		if res.GamesPlayed != res.WinnerWins+res.LoserWins || res.GamesPlayed > maxSeriesGames {
			t.Fatalf("inconsistent series length: %+v", res)
		}
	}
}

func testStructure() *league.Structure {
	return &league.Structure{
		Divisions: map[string][]string{
			"North": {"N1", "N2", "N3", "N4", "N5"},
			"South": {"S1", "S2", "S3", "S4", "S5"},
		},
		Conferences: map[string][]string{
			"East": {"North", "South"},
		},
	}
}

func tableWithPoints(points map[string]int) Table {
	t := Table{}
	for team, pts := range points {
		t[team] = &Row{Team: team, Points: pts}
	}
	return t
}

func TestSelectFieldDivisionsAndWildcards(t *testing.T) {
	table := tableWithPoints(map[string]int{
		"N1": 100, "N2": 96, "N3": 94, "N4": 92, "N5": 60,
		"S1": 98, "S2": 90, "S3": 88, "S4": 93, "S5": 50,
	})

	field := SelectField(table, testStructure())
	if field.Shortfall {
		t.Fatal("unexpected shortfall flag")
	}

	// Top three per division plus N4 and S3 as wildcards, seeded by
	// conference-wide order rather than divisional rank.
	want := []string{"N1", "S1", "N2", "N3", "S4", "N4", "S2", "S3"}
	if got := field.Seeds["East"]; !reflect.DeepEqual(got, want) {
		t.Errorf("seeds = %v, want %v", got, want)
	}
}

func TestSelectFieldNoDuplicates(t *testing.T) {
	table := tableWithPoints(map[string]int{
		// Heavy ties: all five keys equal, forcing the name tiebreak.
		"N1": 50, "N2": 50, "N3": 50, "N4": 50, "N5": 50,
		"S1": 50, "S2": 50, "S3": 50, "S4": 50, "S5": 50,
	})

	field := SelectField(table, testStructure())
	seeds := field.Seeds["East"]
	if len(seeds) != ConferenceFieldSize {
		t.Fatalf("field size = %d, want %d", len(seeds), ConferenceFieldSize)
	}
	seen := make(map[string]bool)
	for _, team := range seeds {
		if seen[team] {
			t.Fatalf("team %s selected twice", team)
		}
		seen[team] = true
	}
}

func TestSelectFieldShortfallFallback(t *testing.T) {
	st := &league.Structure{
		Divisions: map[string][]string{
			"Big":  {"B1", "B2", "B3", "B4", "B5", "B6", "B7"},
			"Tiny": {"T1"},
		},
		Conferences: map[string][]string{
			"East": {"Big", "Tiny"},
		},
	}
	table := tableWithPoints(map[string]int{
		"B1": 90, "B2": 80, "B3": 70, "B4": 60, "B5": 50, "B6": 40, "B7": 30,
		"T1": 20,
	})

	field := SelectField(table, st)
	if !field.Shortfall {
		t.Fatal("expected shortfall flag for a one-team division")
	}
	if len(field.Seeds["East"]) != ConferenceFieldSize {
		t.Fatalf("field size = %d, want %d", len(field.Seeds["East"]), ConferenceFieldSize)
	}
	want := []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "T1"}
	if got := field.Seeds["East"]; !reflect.DeepEqual(got, want) {
		t.Errorf("seeds = %v, want %v", got, want)
	}
}

func TestBracketFixedTopology(t *testing.T) {
	// Sixteen teams, best-ranked always wins: the bracket must resolve to
	// seed 1 of each conference meeting in the final.
	east := []string{"E1", "E2", "E3", "E4", "E5", "E6", "E7", "E8"}
	west := []string{"W1", "W2", "W3", "W4", "W5", "W6", "W7", "W8"}
	order := make([]string, 0, 16)
	for i := 0; i < 8; i++ {
		order = append(order, east[i], west[i]) // E1, W1, E2, W2, ...
	}

	rank := make(map[string]int, len(order))
	for i, team := range order {
		rank[team] = i
	}
	script := &scriptedSim{winner: func(home, away string) string {
		if rank[home] < rank[away] {
			return home
		}
		return away
	}}

	b := NewBracket(script, rankedRows(order...))
	field := Field{Seeds: map[string][]string{"East": east, "West": west}}
	res := b.Run(field, []string{"East", "West"}, nil)

	if res.Champion != "E1" {
		t.Errorf("champion = %s, want E1", res.Champion)
	}
	wantRounds := [4][]string{
		{"E1", "E2", "E3", "E4", "W1", "W2", "W3", "W4"},
		{"E1", "E2", "W1", "W2"},
		{"E1", "W1"},
		{"E1"},
	}
	for i, want := range wantRounds {
		if !sameMembers(res.RoundWinners[i], want) {
			t.Errorf("round %d winners = %v, want %v", i+1, res.RoundWinners[i], want)
		}
	}
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int)
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
