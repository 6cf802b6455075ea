package sim

import (
	"sort"

	"github.com/charleschow/nhl-montecarlo/internal/league"
)

// Row is one team's running record. ROW counts regulation wins and OTW
// counts overtime/shootout wins; together with points they form the first
// three tie-break keys.
type Row struct {
	Team         string
	Points       int
	ROW          int
	OTW          int
	GoalsFor     int
	GoalsAgainst int
	GamesPlayed  int
}

// GoalDiff is the fourth tie-break key.
func (r *Row) GoalDiff() int { return r.GoalsFor - r.GoalsAgainst }

// Table accumulates game results into per-team rows. Folding is commutative
// per team, so simulated games may be applied in any order.
type Table map[string]*Row

// NewTable returns a table with a zeroed row for every team. Teams that
// never appear in a result still rank (at the bottom).
func NewTable(teams []string) Table {
	t := make(Table, len(teams))
	for _, team := range teams {
		t[team] = &Row{Team: team}
	}
	return t
}

// TableFromSchedule folds every completed game of a schedule into a fresh
// table covering the given teams.
func TableFromSchedule(teams []string, sched league.Schedule) Table {
	t := NewTable(teams)
	for _, g := range sched.PlayedGames() {
		t.Fold(ResultFromSchedule(g))
	}
	return t
}

// Fold applies one game result.
func (t Table) Fold(g GameResult) {
	home := t.row(g.Home)
	away := t.row(g.Away)

	home.GoalsFor += g.HomeGoals
	home.GoalsAgainst += g.AwayGoals
	home.GamesPlayed++
	away.GoalsFor += g.AwayGoals
	away.GoalsAgainst += g.HomeGoals
	away.GamesPlayed++

	home.Points += g.HomePoints
	away.Points += g.AwayPoints

	winner := home
	if g.AwayPoints == 2 {
		winner = away
	}
	if g.WentToOvertime {
		winner.OTW++
	} else {
		winner.ROW++
	}
}

func (t Table) row(team string) *Row {
	if r, ok := t[team]; ok {
		return r
	}
	r := &Row{Team: team}
	t[team] = r
	return r
}

// Clone deep-copies the table so a trial can fold simulated games without
// touching the shared baseline.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for team, r := range t {
		cp := *r
		out[team] = &cp
	}
	return out
}

// Rank orders the given teams best-first by the NHL tie-break:
// points, then ROW, then OTW, then goal differential, then goals for.
// Team name breaks any remaining tie so the order is a strict total order.
// Teams with no row rank as zeroed rows.
func (t Table) Rank(teams []string) []*Row {
	rows := make([]*Row, 0, len(teams))
	for _, team := range teams {
		if r, ok := t[team]; ok {
			rows = append(rows, r)
		} else {
			rows = append(rows, &Row{Team: team})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return betterRow(rows[i], rows[j]) })
	return rows
}

// RankAll orders every team in the table.
func (t Table) RankAll() []*Row {
	teams := make([]string, 0, len(t))
	for team := range t {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return t.Rank(teams)
}

func betterRow(a, b *Row) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.ROW != b.ROW {
		return a.ROW > b.ROW
	}
	if a.OTW != b.OTW {
		return a.OTW > b.OTW
	}
	if a.GoalDiff() != b.GoalDiff() {
		return a.GoalDiff() > b.GoalDiff()
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.Team < b.Team
}
