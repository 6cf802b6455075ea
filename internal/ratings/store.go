// Package ratings derives per-team offensive and defensive ratings (xGF/60,
// xGA/60) from player on-ice statistics persisted in SQLite, and exposes
// them to the simulation through a read-only snapshot.
package ratings

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charleschow/nhl-montecarlo/internal/telemetry"

	_ "modernc.org/sqlite"
)

// PlayerRow is one player's season-to-date 5v5 on-ice line. Skaters and
// goalies share the table; a traded player appears once under his current
// team.
type PlayerRow struct {
	Player   string
	Team     string
	Position string
	TOI      float64 // minutes
	XGF      float64
	XGA      float64
}

// Store persists player stat lines in SQLite. Each refresh replaces the
// whole table: the source publishes full season-to-date aggregates, not
// deltas, so there is nothing to merge.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS players (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			player   TEXT NOT NULL,
			team     TEXT NOT NULL,
			position TEXT,
			toi      REAL,
			xgf      REAL,
			xga      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_team ON players(team)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	var count int64
	if err := db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("read row count: %w", err)
	}
	telemetry.Plainf("player store: opened %s  rows=%d", path, count)

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ReplaceAll swaps the stored player set for a fresh download atomically.
func (s *Store) ReplaceAll(rows []PlayerRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM players`); err != nil {
		return fmt.Errorf("clear players: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO players (player, team, position, toi, xgf, xga) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Player, r.Team, r.Position, r.TOI, r.XGF, r.XGA); err != nil {
			return fmt.Errorf("insert %s: %w", r.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	telemetry.Metrics.PlayersLoaded.Add(int64(len(rows)))
	return nil
}

// teamTotals sums on-ice stats for a team's players above the TOI cutoff.
func (s *Store) teamTotals(team string, minTOI float64) (xgf, toi, xga float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT COALESCE(SUM(xgf), 0), COALESCE(SUM(toi), 0), COALESCE(SUM(xga), 0)
		FROM players
		WHERE team = ? AND toi > ?`, team, minTOI)
	if err := row.Scan(&xgf, &toi, &xga); err != nil {
		return 0, 0, 0, fmt.Errorf("team totals %s: %w", team, err)
	}
	return xgf, toi, xga, nil
}
