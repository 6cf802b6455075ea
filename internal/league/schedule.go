package league

import "sort"

// ScheduledGame is one row of the season schedule. Completed games carry
// their final score and OT flag; future games carry zeros. The simulation
// never mutates the schedule.
type ScheduledGame struct {
	Date      string // YYYY-MM-DD
	Home      string
	Away      string
	HomeGoals int
	AwayGoals int
	Overtime  string // "OT", "SO", or "" for a regulation result
	Played    bool
}

// Schedule is an ordered (by date) season schedule.
type Schedule []ScheduledGame

// SortByDate orders games chronologically, preserving source order within
// a date.
func (s Schedule) SortByDate() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date < s[j].Date })
}

// PlayedGames returns the completed games.
func (s Schedule) PlayedGames() Schedule {
	var out Schedule
	for _, g := range s {
		if g.Played {
			out = append(out, g)
		}
	}
	return out
}

// Remaining returns the games still to be simulated.
func (s Schedule) Remaining() Schedule {
	var out Schedule
	for _, g := range s {
		if !g.Played {
			out = append(out, g)
		}
	}
	return out
}

// OnDate filters games scheduled for the given YYYY-MM-DD date.
func (s Schedule) OnDate(date string) Schedule {
	var out Schedule
	for _, g := range s {
		if g.Date == date {
			out = append(out, g)
		}
	}
	return out
}

// Teams returns the distinct teams appearing in the schedule, sorted.
func (s Schedule) Teams() []string {
	seen := make(map[string]bool)
	for _, g := range s {
		seen[g.Home] = true
		seen[g.Away] = true
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}
