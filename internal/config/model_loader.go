package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelParams holds every tunable of the simulation model. These are policy
// knobs, not secrets, so they live in a YAML file checked into the repo
// rather than in the environment.
type ModelParams struct {
	// Game model
	HomeIceAdvantage float64 `yaml:"home_ice_advantage"` // multiplier on home expected goals
	LeagueAvgXG      float64 `yaml:"league_avg_xg"`      // xG/60 calibration constant
	OTHomeWinProb    float64 `yaml:"ot_home_win_prob"`   // historical: ~55% of OT/SO won by home team
	StrengthVariance float64 `yaml:"strength_variance"`  // per-game uniform rating perturbation, ±v

	// Ratings derivation
	MinTOIMinutes     float64 `yaml:"min_toi_minutes"`
	FallbackOffRating float64 `yaml:"fallback_off_rating"`
	FallbackDefRating float64 `yaml:"fallback_def_rating"`
	RatingFloor       float64 `yaml:"rating_floor"`
	RatingCeil        float64 `yaml:"rating_ceil"`

	// Per-game prediction mode
	TrialsPerGame int `yaml:"trials_per_game"`
}

func LoadModelParams(path string) (ModelParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelParams{}, fmt.Errorf("read model params: %w", err)
	}

	var mp ModelParams
	if err := yaml.Unmarshal(data, &mp); err != nil {
		return ModelParams{}, fmt.Errorf("parse model params: %w", err)
	}

	if err := mp.Validate(); err != nil {
		return ModelParams{}, fmt.Errorf("model params %s: %w", path, err)
	}
	return mp, nil
}

// Validate rejects degenerate configuration before any trial starts.
// A bad knob here would silently bias every one of tens of thousands of
// trials, so these are fatal rather than clamped.
func (mp ModelParams) Validate() error {
	if mp.HomeIceAdvantage <= 0 {
		return fmt.Errorf("home_ice_advantage must be positive, got %.3f", mp.HomeIceAdvantage)
	}
	if mp.LeagueAvgXG <= 0 {
		return fmt.Errorf("league_avg_xg must be positive, got %.3f", mp.LeagueAvgXG)
	}
	if mp.OTHomeWinProb <= 0 || mp.OTHomeWinProb >= 1 {
		return fmt.Errorf("ot_home_win_prob must be in (0,1), got %.3f", mp.OTHomeWinProb)
	}
	if mp.StrengthVariance < 0 || mp.StrengthVariance >= 1 {
		return fmt.Errorf("strength_variance must be in [0,1), got %.3f", mp.StrengthVariance)
	}
	if mp.RatingFloor <= 0 || mp.RatingCeil <= mp.RatingFloor {
		return fmt.Errorf("rating clamp [%.2f, %.2f] is not a valid range", mp.RatingFloor, mp.RatingCeil)
	}
	if mp.FallbackOffRating < mp.RatingFloor || mp.FallbackOffRating > mp.RatingCeil {
		return fmt.Errorf("fallback_off_rating %.2f outside clamp range", mp.FallbackOffRating)
	}
	if mp.FallbackDefRating < mp.RatingFloor || mp.FallbackDefRating > mp.RatingCeil {
		return fmt.Errorf("fallback_def_rating %.2f outside clamp range", mp.FallbackDefRating)
	}
	if mp.MinTOIMinutes < 0 {
		return fmt.Errorf("min_toi_minutes must be non-negative, got %.1f", mp.MinTOIMinutes)
	}
	if mp.TrialsPerGame <= 0 {
		return fmt.Errorf("trials_per_game must be positive, got %d", mp.TrialsPerGame)
	}
	return nil
}

// DefaultModelParams mirrors configs/model.yaml. Tests and library callers
// that have no config file on disk start from here.
func DefaultModelParams() ModelParams {
	return ModelParams{
		HomeIceAdvantage:  1.10,
		LeagueAvgXG:       2.95,
		OTHomeWinProb:     0.55,
		StrengthVariance:  0.15,
		MinTOIMinutes:     20,
		FallbackOffRating: 2.80,
		FallbackDefRating: 2.80,
		RatingFloor:       1.8,
		RatingCeil:        4.8,
		TrialsPerGame:     25000,
	}
}
