package ratings

import (
	"github.com/charleschow/nhl-montecarlo/internal/config"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

// Strength is a team's derived rating pair, both per 60 minutes.
type Strength struct {
	Off float64 // xGF/60
	Def float64 // xGA/60
}

// TeamStrength computes a team's rating from stored player lines:
// total on-ice xGF and xGA over total TOI, per 60 minutes, clamped to the
// plausible range. Missing or empty data yields the configured fallback,
// never an error, so one unknown team can't abort a run.
func (s *Store) TeamStrength(team string, mp config.ModelParams) Strength {
	fallback := Strength{Off: mp.FallbackOffRating, Def: mp.FallbackDefRating}

	xgf, toi, xga, err := s.teamTotals(team, mp.MinTOIMinutes)
	if err != nil {
		telemetry.Warnf("ratings: %s: %v, using fallback", team, err)
		return fallback
	}
	if toi <= 0 {
		return fallback
	}

	hours := toi / 60.0
	return Strength{
		Off: clamp(xgf/hours, mp.RatingFloor, mp.RatingCeil),
		Def: clamp(xga/hours, mp.RatingFloor, mp.RatingCeil),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN guards the Poisson mean downstream
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
