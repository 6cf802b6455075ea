package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Season. Hockey-Reference keys a season by its end year; a season that
	// starts in October 2025 is NHL_2026.
	SeasonStartYear int
	SeasonEndYear   int

	// Data sources
	ScheduleBaseURL string
	StatsBaseURL    string

	// Paths
	PlayerDBPath    string
	ModelParamsPath string
	ResultsCSVPath  string

	// Simulation
	Trials  int
	Workers int // 0 = one per CPU
	Seed    int64

	// Display
	ShowTodaysGames bool
	ProgressEvery   int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	now := time.Now()
	startYear := now.Year()
	if now.Month() < time.July {
		startYear--
	}
	endYear := startYear + 1

	return &Config{
		SeasonStartYear: envInt("NHLSIM_SEASON_START_YEAR", startYear),
		SeasonEndYear:   envInt("NHLSIM_SEASON_END_YEAR", endYear),

		ScheduleBaseURL: envStr("NHLSIM_SCHEDULE_BASE_URL", "https://www.hockey-reference.com"),
		StatsBaseURL:    envStr("NHLSIM_STATS_BASE_URL", "https://www.naturalstattrick.com"),

		PlayerDBPath:    envStr("NHLSIM_PLAYER_DB", fmt.Sprintf("data/db/nhl_%d_%d_players.db", startYear, endYear)),
		ModelParamsPath: envStr("NHLSIM_MODEL_PARAMS", "configs/model.yaml"),
		ResultsCSVPath:  envStr("NHLSIM_RESULTS_CSV", fmt.Sprintf("data/results/nhl_predictions_%s.csv", now.Format("20060102"))),

		Trials:  envInt("NHLSIM_TRIALS", 20000),
		Workers: envInt("NHLSIM_WORKERS", 0),
		Seed:    envInt64("NHLSIM_SEED", 0),

		ShowTodaysGames: envStr("NHLSIM_SHOW_TODAYS_GAMES", "true") == "true",
		ProgressEvery:   envInt("NHLSIM_PROGRESS_EVERY", 2000),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
