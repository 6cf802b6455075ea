package sim

import (
	"math/rand"

	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

const (
	// ConferenceFieldSize is the playoff berths per conference: three
	// automatic qualifiers from each of two divisions plus two wildcards.
	ConferenceFieldSize    = 8
	divisionAutoQualifiers = 3
	wildcardsPerConference = 2

	winsToTakeSeries = 4
	maxSeriesGames   = 7
)

// homeIcePattern is the 2-2-1-1-1 rotation: the higher seed hosts games
// 1, 2, 5 and 7, the lower seed games 3, 4 and 6.
var homeIcePattern = [maxSeriesGames]bool{true, true, false, false, true, false, true}

// Field is the playoff field for one trial: per conference, the qualified
// teams in seed order (1 through 8). Shortfall is set when a conference
// could not fill its berths from division and wildcard rules alone and the
// rank-order fallback was used.
type Field struct {
	Seeds     map[string][]string
	Shortfall bool
}

// SelectField derives the playoff field from final standings.
//
// Within each division the top three teams by tie-break order qualify
// automatically. Each conference then adds its two best-ranked remaining
// teams as wildcards. Seeds 1-8 are the conference tie-break order of the
// eight qualifiers; a team's divisional rank does not determine its seed.
//
// If division data is truncated and a conference cannot fill its berths,
// remaining slots are filled by conference-wide rank among the unselected
// teams. That is a warning-level condition, never a crash.
func SelectField(t Table, st *league.Structure) Field {
	field := Field{Seeds: make(map[string][]string, len(st.Conferences))}

	for _, conf := range st.ConferenceNames() {
		confTeams := st.ConferenceTeams(conf)
		selected := make(map[string]bool)

		for _, div := range st.Conferences[conf] {
			for i, row := range t.Rank(st.Divisions[div]) {
				if i == divisionAutoQualifiers {
					break
				}
				selected[row.Team] = true
			}
		}

		confRank := t.Rank(confTeams)
		wildcards := 0
		for _, row := range confRank {
			if wildcards == wildcardsPerConference {
				break
			}
			if !selected[row.Team] {
				selected[row.Team] = true
				wildcards++
			}
		}

		slots := ConferenceFieldSize
		if len(confTeams) < slots {
			slots = len(confTeams)
		}
		if len(selected) < slots {
			field.Shortfall = true
			telemetry.Warnf("playoffs: %s conference filled only %d of %d berths by rule, falling back to conference rank",
				conf, len(selected), slots)
			for _, row := range confRank {
				if len(selected) == slots {
					break
				}
				selected[row.Team] = true
			}
		}

		seeds := make([]string, 0, slots)
		for _, row := range confRank {
			if selected[row.Team] {
				seeds = append(seeds, row.Team)
			}
		}
		field.Seeds[conf] = seeds
	}
	return field
}

// SeriesResult is a finished best-of-7.
type SeriesResult struct {
	Winner, Loser         string
	WinnerWins, LoserWins int
	GamesPlayed           int
}

// GameSimulator produces one game outcome at a time. *Simulator is the
// production implementation; tests substitute scripted ones.
type GameSimulator interface {
	SimulateGame(home, away string, rng *rand.Rand) GameResult
}

// Bracket advances a playoff field through sequential best-of-7 rounds.
// The bracket is fixed after seeding: no reseeding between rounds. Home ice
// within a series belongs to the team ranked higher in the final
// regular-season standings.
type Bracket struct {
	sim        GameSimulator
	leagueRank map[string]int
}

// NewBracket builds a bracket over the given final standings order
// (best team first).
func NewBracket(s GameSimulator, finalOrder []*Row) *Bracket {
	rank := make(map[string]int, len(finalOrder))
	for i, row := range finalOrder {
		rank[row.Team] = i
	}
	return &Bracket{sim: s, leagueRank: rank}
}

// PlaySeries simulates one best-of-7 between the home-ice holder and the
// challenger. The series ends the moment a side takes four games; games
// past the clinch are never simulated.
func (b *Bracket) PlaySeries(higher, lower string, rng *rand.Rand) SeriesResult {
	var higherWins, lowerWins, game int
	for higherWins < winsToTakeSeries && lowerWins < winsToTakeSeries {
		home, away := higher, lower
		if !homeIcePattern[game] {
			home, away = lower, higher
		}
		game++

		res := b.sim.SimulateGame(home, away, rng)
		if res.Winner() == higher {
			higherWins++
		} else {
			lowerWins++
		}
	}
	telemetry.Metrics.SeriesSimulated.Inc()

	out := SeriesResult{WinnerWins: winsToTakeSeries, GamesPlayed: game}
	if higherWins == winsToTakeSeries {
		out.Winner, out.Loser, out.LoserWins = higher, lower, lowerWins
	} else {
		out.Winner, out.Loser, out.LoserWins = lower, higher, higherWins
	}
	return out
}

// BracketResult records every round's winners for one trial.
// RoundWinners[0] holds conference quarterfinal winners, [1] semifinal
// winners, [2] conference champions, [3] the champion alone.
type BracketResult struct {
	RoundWinners [4][]string
	Champion     string
}

// Run plays both conferences through to their champions, then the final.
// Within a round, seeds pair outside-in (1v8, 2v7, 3v6, 4v5) and the
// winners meet along fixed bracket lines in later rounds.
func (b *Bracket) Run(field Field, conferences []string, rng *rand.Rand) BracketResult {
	var out BracketResult

	var finalists []string
	for _, conf := range conferences {
		champ, rounds := b.runConference(field.Seeds[conf], rng)
		for i, winners := range rounds {
			out.RoundWinners[i] = append(out.RoundWinners[i], winners...)
		}
		if champ != "" {
			finalists = append(finalists, champ)
		}
	}

	if len(finalists) == 2 {
		higher, lower := finalists[0], finalists[1]
		if b.leagueRank[lower] < b.leagueRank[higher] {
			higher, lower = lower, higher
		}
		out.Champion = b.PlaySeries(higher, lower, rng).Winner
		out.RoundWinners[3] = []string{out.Champion}
	} else if len(finalists) == 1 {
		// Degenerate single-conference field: the lone champion takes it.
		out.Champion = finalists[0]
		out.RoundWinners[3] = finalists
	}
	return out
}

// runConference knocks a conference's seeds down to one team. Rounds are
// aligned to the end so that the last conference round always lands in the
// conference-finals slot even for a truncated field.
func (b *Bracket) runConference(seeds []string, rng *rand.Rand) (string, [3][]string) {
	var rounds [3][]string
	if len(seeds) == 0 {
		return "", rounds
	}

	totalRounds := 0
	for n := len(seeds); n > 1; n = (n + 1) / 2 {
		totalRounds++
	}

	cur := seeds
	for r := 1; len(cur) > 1; r++ {
		next := make([]string, 0, (len(cur)+1)/2)
		for i := 0; i < len(cur)/2; i++ {
			higher, lower := cur[i], cur[len(cur)-1-i]
			if b.leagueRank[lower] < b.leagueRank[higher] {
				higher, lower = lower, higher
			}
			next = append(next, b.PlaySeries(higher, lower, rng).Winner)
		}
		if len(cur)%2 == 1 {
			// odd field: the middle seed draws a bye
			next = append(next, cur[len(cur)/2])
		}

		idx := r + 2 - totalRounds
		if idx >= 0 && idx < len(rounds) {
			rounds[idx] = append(rounds[idx], next...)
		}
		cur = next
	}
	return cur[0], rounds
}
