package sim

import (
	"context"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

// TeamTally is one team's outcome counts across trials. RoundWins indices
// match BracketResult.RoundWinners: quarterfinal, semifinal, conference
// final, championship final.
type TeamTally struct {
	Playoffs         int
	RoundWins        [4]int
	PresidentsTrophy int
	Championships    int
}

// AggregateResult is the tallied output of a Monte Carlo run. Probabilities
// are counts over TrialsRun; skipped trials contribute to neither.
type AggregateResult struct {
	TrialsRun     int
	TrialsSkipped int
	Teams         map[string]*TeamTally
}

func newAggregateResult() *AggregateResult {
	return &AggregateResult{Teams: make(map[string]*TeamTally)}
}

func (a *AggregateResult) tally(team string) *TeamTally {
	if t, ok := a.Teams[team]; ok {
		return t
	}
	t := &TeamTally{}
	a.Teams[team] = t
	return t
}

func (a *AggregateResult) record(out TrialOutcome) {
	a.TrialsRun++
	for _, team := range out.PlayoffTeams {
		a.tally(team).Playoffs++
	}
	for round, winners := range out.RoundWinners {
		for _, team := range winners {
			a.tally(team).RoundWins[round]++
		}
	}
	if out.PresidentsTrophy != "" {
		a.tally(out.PresidentsTrophy).PresidentsTrophy++
	}
	if out.Champion != "" {
		a.tally(out.Champion).Championships++
	}
}

func (a *AggregateResult) merge(b *AggregateResult) {
	a.TrialsRun += b.TrialsRun
	a.TrialsSkipped += b.TrialsSkipped
	for team, bt := range b.Teams {
		at := a.tally(team)
		at.Playoffs += bt.Playoffs
		at.PresidentsTrophy += bt.PresidentsTrophy
		at.Championships += bt.Championships
		for i := range at.RoundWins {
			at.RoundWins[i] += bt.RoundWins[i]
		}
	}
}

// Pct converts a count to a probability over the trials actually run.
func (a *AggregateResult) Pct(count int) float64 {
	if a.TrialsRun == 0 {
		return 0
	}
	return float64(count) / float64(a.TrialsRun)
}

// TrialOutcome is the record of one simulated season-to-champion run.
type TrialOutcome struct {
	PlayoffTeams     []string
	RoundWinners     [4][]string
	PresidentsTrophy string
	Champion         string
}

// Runner orchestrates independent full-season trials and aggregates them.
type Runner struct {
	sim       GameSimulator
	structure *league.Structure
	schedule  league.Schedule
	seed      int64
	workers   int

	progressEvery int
	issued        atomic.Int64
}

// NewRunner builds a runner over a schedule snapshot. seed fixes the whole
// run; workers <= 0 means one per CPU.
func NewRunner(s GameSimulator, st *league.Structure, sched league.Schedule, seed int64, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{sim: s, structure: st, schedule: sched, seed: seed, workers: workers}
}

// SetProgressEvery logs every n issued trials. Zero disables progress logs.
func (r *Runner) SetProgressEvery(n int) { r.progressEvery = n }

// Run executes up to trials independent season simulations.
//
// Trials are embarrassingly parallel: each one clones the baseline standings,
// owns a private random stream derived from the run seed and the trial
// index, and reports into its worker's local tally. Worker tallies are
// merged once at the end, so no counter is ever incremented concurrently.
//
// Cancelling the context stops the issuing of new trials; trials already
// underway finish, and the partial result remains valid with TrialsRun
// reflecting what completed.
func (r *Runner) Run(ctx context.Context, trials int) (*AggregateResult, error) {
	baseline := TableFromSchedule(r.structure.Teams(), r.schedule)
	remaining := r.schedule.Remaining()
	conferences := r.structure.ConferenceNames()

	telemetry.Infof("running %d season trials over %d remaining games (%d workers, seed %d)",
		trials, len(remaining), r.workers, r.seed)

	next := make(chan int)
	results := make([]*AggregateResult, r.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(next)
		for i := 0; i < trials; i++ {
			select {
			case next <- i:
			case <-gctx.Done():
				return nil
			}
		}
		return nil
	})

	for w := 0; w < r.workers; w++ {
		agg := newAggregateResult()
		results[w] = agg
		g.Go(func() error {
			telemetry.Metrics.ActiveWorkers.Inc()
			defer telemetry.Metrics.ActiveWorkers.Dec()
			for trial := range next {
				r.runTrial(trial, baseline, remaining, conferences, agg)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := newAggregateResult()
	for _, agg := range results {
		total.merge(agg)
	}
	if skipped := total.TrialsSkipped; skipped > 0 {
		telemetry.Warnf("skipped %d of %d trials", skipped, trials)
	}
	return total, ctx.Err()
}

// runTrial plays one full season: complete the schedule, rank, qualify,
// run the bracket, record. A panic inside a trial aborts only that trial.
func (r *Runner) runTrial(trial int, baseline Table, remaining league.Schedule, conferences []string, agg *AggregateResult) {
	defer func() {
		if rec := recover(); rec != nil {
			agg.TrialsSkipped++
			telemetry.Metrics.TrialsSkipped.Inc()
			telemetry.Errorf("trial %d panicked and was skipped: %v", trial, rec)
		}
	}()

	start := time.Now()
	rng := rand.New(rand.NewSource(trialSeed(r.seed, trial)))

	table := baseline.Clone()
	for _, game := range remaining {
		table.Fold(r.sim.SimulateGame(game.Home, game.Away, rng))
	}

	finalOrder := table.RankAll()
	field := SelectField(table, r.structure)
	bracket := NewBracket(r.sim, finalOrder)
	bres := bracket.Run(field, conferences, rng)

	out := TrialOutcome{
		RoundWinners:     bres.RoundWinners,
		PresidentsTrophy: finalOrder[0].Team,
		Champion:         bres.Champion,
	}
	for _, seeds := range field.Seeds {
		out.PlayoffTeams = append(out.PlayoffTeams, seeds...)
	}
	agg.record(out)

	telemetry.Metrics.TrialsRun.Inc()
	telemetry.Metrics.TrialLatency.Record(time.Since(start))
	if n := int64(r.progressEvery); n > 0 {
		if done := r.issued.Add(1); done%n == 0 {
			telemetry.Infof("   %d trials complete", done)
		}
	}
}

// trialSeed derives an independent stream seed from the run seed and trial
// index. splitmix64 finalizer: consecutive indices land in unrelated parts
// of the sequence space, so trial streams do not correlate.
func trialSeed(seed int64, trial int) int64 {
	z := uint64(seed) + uint64(trial+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}
