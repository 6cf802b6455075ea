package main

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/nhl-montecarlo/internal/adapters/outbound/hockeyref_http"
	"github.com/charleschow/nhl-montecarlo/internal/adapters/outbound/nst_http"
	"github.com/charleschow/nhl-montecarlo/internal/config"
	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/ratings"
	"github.com/charleschow/nhl-montecarlo/internal/report"
	"github.com/charleschow/nhl-montecarlo/internal/sim"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting NHL Monte Carlo  season %d-%d  trials=%d",
		cfg.SeasonStartYear, cfg.SeasonEndYear, cfg.Trials)

	params, err := config.LoadModelParams(cfg.ModelParamsPath)
	if err != nil {
		telemetry.Errorf("Model params: %v", err)
		os.Exit(1)
	}

	// SIGINT stops issuing new trials; whatever has completed is reported.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ── Schedule ───────────────────────────────────────────────
	schedClient := hockeyref_http.NewClient(cfg.ScheduleBaseURL)
	schedule, err := schedClient.FetchSchedule(ctx, cfg.SeasonEndYear)
	if err != nil {
		telemetry.Errorf("Schedule fetch: %v", err)
		os.Exit(1)
	}

	// ── Player stats → ratings ────────────────────────────────
	store, err := ratings.Open(cfg.PlayerDBPath)
	if err != nil {
		telemetry.Errorf("Player store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	statsClient := nst_http.NewClient(cfg.StatsBaseURL)
	players, err := statsClient.FetchPlayers(ctx, cfg.SeasonStartYear, cfg.SeasonEndYear)
	if err != nil {
		// Stale stored stats beat no stats; fallback ratings cover the rest.
		telemetry.Warnf("Player stats download failed (%v), using stored data", err)
	} else if err := store.ReplaceAll(players); err != nil {
		telemetry.Warnf("Player store refresh: %v", err)
	}

	structure := league.Default()
	source := ratings.Snapshot(store, structure.Teams(), params)

	simParams := sim.Params{
		HomeIceAdvantage: params.HomeIceAdvantage,
		LeagueAvgXG:      params.LeagueAvgXG,
		OTHomeWinProb:    params.OTHomeWinProb,
		StrengthVariance: params.StrengthVariance,
		TrialsPerGame:    params.TrialsPerGame,
	}
	simulator := sim.NewSimulator(simParams, source)

	// ── Today's games ─────────────────────────────────────────
	if cfg.ShowTodaysGames {
		today := schedule.OnDate(time.Now().Format("2006-01-02"))
		if len(today) == 0 {
			telemetry.Infof("No games scheduled today")
		} else {
			rng := newRNG(cfg.Seed)
			preds := make([]sim.GamePrediction, 0, len(today))
			for _, g := range today {
				preds = append(preds, simulator.PredictGame(g.Home, g.Away, rng))
			}
			report.RenderPredictions(os.Stdout, preds)
		}
	}

	// ── Full season Monte Carlo ───────────────────────────────
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runner := sim.NewRunner(simulator, structure, schedule, seed, cfg.Workers)
	runner.SetProgressEvery(cfg.ProgressEvery)

	start := time.Now()
	agg, err := runner.Run(ctx, cfg.Trials)
	if err != nil && !errors.Is(err, context.Canceled) {
		telemetry.Errorf("Simulation: %v", err)
		os.Exit(1)
	}
	if errors.Is(err, context.Canceled) {
		telemetry.Warnf("Interrupted after %d trials, reporting partial results", agg.TrialsRun)
	}

	telemetry.Infof("%d trials in %s  (trial p50=%s p99=%s)",
		agg.TrialsRun, time.Since(start).Round(time.Second),
		telemetry.Metrics.TrialLatency.P50(), telemetry.Metrics.TrialLatency.P99())

	report.Render(os.Stdout, agg, structure.Teams())
	if err := report.WriteCSV(cfg.ResultsCSVPath, agg, structure.Teams()); err != nil {
		telemetry.Errorf("Results CSV: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Results saved to %s", cfg.ResultsCSVPath)
}

func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
