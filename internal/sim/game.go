package sim

import (
	"math/rand"

	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

// A Poisson mean must be positive; clamp degenerate inputs here instead of
// letting the sampler spin.
const minExpectedGoals = 0.05

// Params are the game-model knobs, carried explicitly so trials stay
// independent of ambient state.
type Params struct {
	HomeIceAdvantage float64 // multiplier on home expected goals, > 1
	LeagueAvgXG      float64 // xG/60 calibration constant
	OTHomeWinProb    float64 // weighted coin flip for tied games
	StrengthVariance float64 // ±v uniform per-game rating perturbation
	TrialsPerGame    int     // quick-odds mode sample size
}

// RatingSource supplies a team's offensive and defensive rating (xGF/60,
// xGA/60). Implementations must return a usable fallback for unknown teams,
// never an error; rating validation is the provider's job.
type RatingSource interface {
	TeamStrength(team string) (off, def float64)
}

// GameResult is one decided game, real or simulated. Points follow the NHL
// 2-1-0 system: regulation winner 2/0, overtime or shootout winner 2/1.
type GameResult struct {
	Home, Away             string
	HomeGoals, AwayGoals   int
	HomePoints, AwayPoints int
	WentToOvertime         bool
}

// Winner returns the team that took 2 points.
func (g GameResult) Winner() string {
	if g.HomePoints == 2 {
		return g.Home
	}
	return g.Away
}

// ResultFromSchedule converts a completed schedule row into a GameResult.
func ResultFromSchedule(g league.ScheduledGame) GameResult {
	res := GameResult{
		Home: g.Home, Away: g.Away,
		HomeGoals: g.HomeGoals, AwayGoals: g.AwayGoals,
		WentToOvertime: g.Overtime != "",
	}
	switch {
	case g.HomeGoals > g.AwayGoals && !res.WentToOvertime:
		res.HomePoints = 2
	case g.AwayGoals > g.HomeGoals && !res.WentToOvertime:
		res.AwayPoints = 2
	case g.HomeGoals > g.AwayGoals:
		res.HomePoints, res.AwayPoints = 2, 1
	default:
		res.HomePoints, res.AwayPoints = 1, 2
	}
	return res
}

// Simulator produces stochastic game outcomes from team ratings.
type Simulator struct {
	params  Params
	ratings RatingSource
}

func NewSimulator(params Params, ratings RatingSource) *Simulator {
	return &Simulator{params: params, ratings: ratings}
}

// SimulateGame plays one game between home and away on the given source.
//
// Each of the four ratings is first perturbed by an independent uniform
// draw from [1-v, 1+v], modeling night-to-night form without touching the
// stored rating. Goals are then drawn from independent Poisson distributions
// over each side's expected-goal mean.
//
// A tie goes to overtime: a single weighted coin flip decides it, and the
// tied score is kept as-is. The decisive extra goal deliberately does not
// count toward goal differential.
func (s *Simulator) SimulateGame(home, away string, rng *rand.Rand) GameResult {
	homeOff, homeDef := s.ratings.TeamStrength(home)
	awayOff, awayDef := s.ratings.TeamStrength(away)

	if v := s.params.StrengthVariance; v > 0 {
		homeOff *= perturb(rng, v)
		homeDef *= perturb(rng, v)
		awayOff *= perturb(rng, v)
		awayDef *= perturb(rng, v)
	}

	homeXG := homeOff * s.params.HomeIceAdvantage * (awayDef / s.params.LeagueAvgXG)
	awayXG := awayOff * (homeDef / s.params.LeagueAvgXG)
	if homeXG < minExpectedGoals {
		homeXG = minExpectedGoals
	}
	if awayXG < minExpectedGoals {
		awayXG = minExpectedGoals
	}

	hg := poissonSample(rng, homeXG)
	ag := poissonSample(rng, awayXG)
	telemetry.Metrics.GamesSimulated.Inc()

	res := GameResult{Home: home, Away: away, HomeGoals: hg, AwayGoals: ag}
	switch {
	case hg > ag:
		res.HomePoints = 2
	case ag > hg:
		res.AwayPoints = 2
	default:
		res.WentToOvertime = true
		if rng.Float64() < s.params.OTHomeWinProb {
			res.HomePoints, res.AwayPoints = 2, 1
		} else {
			res.HomePoints, res.AwayPoints = 1, 2
		}
	}
	return res
}

func perturb(rng *rand.Rand, v float64) float64 {
	return 1 - v + 2*v*rng.Float64()
}

// GamePrediction summarizes repeated simulations of a single matchup.
type GamePrediction struct {
	Home, Away                 string
	HomeWinPct, AwayWinPct     float64
	HomeAvgGoals, AwayAvgGoals float64
	Favorite                   string // favored team's name, or "TOSS-UP"
	ExpectedTotal              float64
}

// PredictGame runs the quick-odds mode: TrialsPerGame independent games
// between the two sides, aggregated into win percentages and goal averages.
func (s *Simulator) PredictGame(home, away string, rng *rand.Rand) GamePrediction {
	n := s.params.TrialsPerGame
	var homeWins, homeGoals, awayGoals int
	for i := 0; i < n; i++ {
		res := s.SimulateGame(home, away, rng)
		homeGoals += res.HomeGoals
		awayGoals += res.AwayGoals
		if res.Winner() == home {
			homeWins++
		}
	}

	pred := GamePrediction{
		Home: home, Away: away,
		HomeWinPct:   float64(homeWins) / float64(n),
		HomeAvgGoals: float64(homeGoals) / float64(n),
		AwayAvgGoals: float64(awayGoals) / float64(n),
	}
	pred.AwayWinPct = 1 - pred.HomeWinPct
	pred.ExpectedTotal = pred.HomeAvgGoals + pred.AwayAvgGoals
	switch {
	case pred.HomeWinPct > 0.62:
		pred.Favorite = home
	case pred.AwayWinPct > 0.62:
		pred.Favorite = away
	default:
		pred.Favorite = "TOSS-UP"
	}
	return pred
}
