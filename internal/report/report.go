// Package report renders aggregate simulation results as a console table
// and a CSV export. It is a pure sink: nothing here feeds back into the
// simulation.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charleschow/nhl-montecarlo/internal/sim"
)

// row is one team's percentages, precomputed for sorting and rendering.
type row struct {
	team       string
	playoffs   float64
	round2     float64
	confFinal  float64
	final      float64
	presidents float64
	champion   float64
}

func buildRows(agg *sim.AggregateResult, teams []string) []row {
	rows := make([]row, 0, len(teams))
	for _, team := range teams {
		tally := agg.Teams[team]
		if tally == nil {
			tally = &sim.TeamTally{}
		}
		rows = append(rows, row{
			team:       team,
			playoffs:   agg.Pct(tally.Playoffs),
			round2:     agg.Pct(tally.RoundWins[0]),
			confFinal:  agg.Pct(tally.RoundWins[1]),
			final:      agg.Pct(tally.RoundWins[2]),
			presidents: agg.Pct(tally.PresidentsTrophy),
			champion:   agg.Pct(tally.Championships),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].playoffs != rows[j].playoffs {
			return rows[i].playoffs > rows[j].playoffs
		}
		return rows[i].champion > rows[j].champion
	})
	return rows
}

// Render writes the probability table, best playoff odds first.
func Render(w io.Writer, agg *sim.AggregateResult, teams []string) {
	fmt.Fprintf(w, "%-24s %9s %9s %10s %7s %12s %9s\n",
		"Team", "Playoff%", "Round 2%", "Conf Fin%", "Final%", "Presidents%", "Cup%")
	for _, r := range buildRows(agg, teams) {
		fmt.Fprintf(w, "%-24s %8.1f%% %8.1f%% %9.1f%% %6.1f%% %11.2f%% %8.2f%%\n",
			r.team, 100*r.playoffs, 100*r.round2, 100*r.confFinal,
			100*r.final, 100*r.presidents, 100*r.champion)
	}
	fmt.Fprintf(w, "\n%d trials run", agg.TrialsRun)
	if agg.TrialsSkipped > 0 {
		fmt.Fprintf(w, " (%d skipped)", agg.TrialsSkipped)
	}
	fmt.Fprintln(w)
}

// WriteCSV exports the same table for downstream tooling.
func WriteCSV(path string, agg *sim.AggregateResult, teams []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results csv: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"team", "playoff_pct", "round2_pct", "conf_final_pct", "final_pct", "presidents_pct", "cup_pct"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range buildRows(agg, teams) {
		rec := []string{
			r.team,
			pct(r.playoffs), pct(r.round2), pct(r.confFinal),
			pct(r.final), pct(r.presidents), pct(r.champion),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderPredictions prints the today's-games quick odds block.
func RenderPredictions(w io.Writer, preds []sim.GamePrediction) {
	for _, p := range preds {
		fmt.Fprintf(w, "%-24s %5.2f GF  %5.1f%% to win\n", p.Away, p.AwayAvgGoals, 100*p.AwayWinPct)
		fmt.Fprintf(w, "%-24s %5.2f GF  %5.1f%% to win\n", p.Home, p.HomeAvgGoals, 100*p.HomeWinPct)
		fmt.Fprintf(w, "   Favorite: %s | Expected Total: ~%.2f\n", p.Favorite, p.ExpectedTotal)
		fmt.Fprintln(w, "------------------------------------------------------------")
	}
}

func pct(v float64) string { return fmt.Sprintf("%.4f", v) }
