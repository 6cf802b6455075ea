package ratings

import (
	"github.com/charleschow/nhl-montecarlo/internal/config"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

// Static is an immutable team->rating map satisfying sim.RatingSource.
// Being read-only, it is safe to share across simulation workers.
type Static struct {
	byTeam   map[string]Strength
	fallback Strength
}

// NewStatic builds a source from explicit ratings. Unknown teams resolve to
// the fallback pair.
func NewStatic(byTeam map[string]Strength, fallback Strength) *Static {
	m := make(map[string]Strength, len(byTeam))
	for team, st := range byTeam {
		m[team] = st
	}
	return &Static{byTeam: m, fallback: fallback}
}

func (s *Static) TeamStrength(team string) (off, def float64) {
	if st, ok := s.byTeam[team]; ok {
		return st.Off, st.Def
	}
	return s.fallback.Off, s.fallback.Def
}

// Snapshot resolves every team's rating from the store once, up front.
// The simulation hot path then reads an immutable map instead of hitting
// SQLite per game.
func Snapshot(store *Store, teams []string, mp config.ModelParams) *Static {
	byTeam := make(map[string]Strength, len(teams))
	for _, team := range teams {
		st := store.TeamStrength(team, mp)
		byTeam[team] = st
		telemetry.Debugf("ratings: %-24s xGF/60=%.3f xGA/60=%.3f", team, st.Off, st.Def)
	}
	return NewStatic(byTeam, Strength{Off: mp.FallbackOffRating, Def: mp.FallbackDefRating})
}
