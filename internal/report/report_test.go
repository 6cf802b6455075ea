package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charleschow/nhl-montecarlo/internal/sim"
)

func sampleAggregate() *sim.AggregateResult {
	return &sim.AggregateResult{
		TrialsRun: 1000,
		Teams: map[string]*sim.TeamTally{
			"Boston Bruins": {
				Playoffs:         900,
				RoundWins:        [4]int{600, 350, 200, 120},
				PresidentsTrophy: 300,
				Championships:    120,
			},
			"Ottawa Senators": {
				Playoffs:      400,
				RoundWins:     [4]int{150, 60, 20, 5},
				Championships: 5,
			},
			"Buffalo Sabres": {},
		},
	}
}

func TestRenderOrdersByPlayoffOdds(t *testing.T) {
	var buf bytes.Buffer
	teams := []string{"Buffalo Sabres", "Ottawa Senators", "Boston Bruins"}
	Render(&buf, sampleAggregate(), teams)
	out := buf.String()

	boston := strings.Index(out, "Boston Bruins")
	ottawa := strings.Index(out, "Ottawa Senators")
	buffalo := strings.Index(out, "Buffalo Sabres")
	if boston == -1 || ottawa == -1 || buffalo == -1 {
		t.Fatalf("missing team rows:\n%s", out)
	}
	if !(boston < ottawa && ottawa < buffalo) {
		t.Errorf("rows not sorted by playoff odds:\n%s", out)
	}

	if !strings.Contains(out, "90.0%") {
		t.Errorf("Boston playoff odds missing:\n%s", out)
	}
	if !strings.Contains(out, "1000 trials run") {
		t.Errorf("trials footer missing:\n%s", out)
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("no skipped note expected:\n%s", out)
	}
}

func TestRenderNotesSkippedTrials(t *testing.T) {
	agg := sampleAggregate()
	agg.TrialsSkipped = 3
	var buf bytes.Buffer
	Render(&buf, agg, []string{"Boston Bruins"})
	if !strings.Contains(buf.String(), "(3 skipped)") {
		t.Errorf("skipped count missing:\n%s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "out.csv")
	teams := []string{"Boston Bruins", "Ottawa Senators"}
	if err := WriteCSV(path, sampleAggregate(), teams); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(recs))
	}
	if recs[0][0] != "team" || recs[0][6] != "cup_pct" {
		t.Errorf("header = %v", recs[0])
	}
	if recs[1][0] != "Boston Bruins" || recs[1][1] != "0.9000" {
		t.Errorf("first row = %v", recs[1])
	}
	if recs[2][0] != "Ottawa Senators" || recs[2][6] != "0.0050" {
		t.Errorf("second row = %v", recs[2])
	}
}

func TestRenderPredictions(t *testing.T) {
	var buf bytes.Buffer
	RenderPredictions(&buf, []sim.GamePrediction{{
		Home: "Boston Bruins", Away: "Ottawa Senators",
		HomeAvgGoals: 3.2, AwayAvgGoals: 2.5,
		HomeWinPct: 0.65, AwayWinPct: 0.35,
		Favorite: "Boston Bruins", ExpectedTotal: 5.7,
	}})
	out := buf.String()
	if !strings.Contains(out, "Favorite: Boston Bruins") {
		t.Errorf("favorite line missing:\n%s", out)
	}
	if !strings.Contains(out, "65.0% to win") {
		t.Errorf("home odds missing:\n%s", out)
	}
}
