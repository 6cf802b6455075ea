// Package nst_http downloads season-to-date 5v5 on-ice player statistics
// (xGF, xGA, TOI) from a Natural Stat Trick style CSV export.
package nst_http

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/ratings"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

const userAgent = "Mozilla/5.0"

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// FetchPlayers downloads skater and goalie on-ice lines for the season.
// The two position groups come from the same endpoint with different pos
// parameters; both feed a single players table.
func (c *Client) FetchPlayers(ctx context.Context, seasonStartYear, seasonEndYear int) ([]ratings.PlayerRow, error) {
	var all []ratings.PlayerRow
	for _, pos := range []string{"S", "G"} {
		rows, err := c.fetchPosition(ctx, seasonStartYear, seasonEndYear, pos)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	telemetry.Infof("nst_http: loaded %d player lines", len(all))
	return all, nil
}

func (c *Client) fetchPosition(ctx context.Context, startYear, endYear int, pos string) ([]ratings.PlayerRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	season := fmt.Sprintf("%d%d", startYear, endYear)
	url := fmt.Sprintf("%s/playerteams.php?fromseason=%s&thruseason=%s&stype=2&sit=5v5&score=all&stdoi=oi&rate=n&team=ALL&pos=%s&loc=B&toi=0&gpfilt=none&lines=single&draftteam=ALL&dl=1",
		c.baseURL, season, season, pos)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	telemetry.Metrics.HTTPFetches.Inc()

	if resp.StatusCode != http.StatusOK {
		telemetry.Metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("player stats (pos=%s): HTTP %d", pos, resp.StatusCode)
	}

	return ParsePlayersCSV(resp.Body)
}

// ParsePlayersCSV reads the stats export. Column order varies between
// seasons, so fields are located by header name. Rows missing the required
// columns are skipped rather than failing the download.
func ParsePlayersCSV(r io.Reader) ([]ratings.PlayerRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"player", "team", "toi", "xgf", "xga"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("stats csv missing %q column", required)
		}
	}

	var rows []ratings.PlayerRow
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		team := currentTeam(get("team"))
		if team == "" || get("player") == "" {
			continue
		}

		rows = append(rows, ratings.PlayerRow{
			Player:   get("player"),
			Team:     team,
			Position: get("position"),
			TOI:      parseFloat(get("toi")),
			XGF:      parseFloat(get("xgf")),
			XGA:      parseFloat(get("xga")),
		})
	}
	return rows, nil
}

// currentTeam resolves a traded player's team list ("TOR, BOS" or
// "TOR/BOS") to the last entry, which the source orders chronologically.
func currentTeam(raw string) string {
	parts := strings.Split(strings.ReplaceAll(raw, "/", ","), ",")
	last := ""
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			last = p
		}
	}
	if last == "" {
		return ""
	}
	return league.ResolveTeam(last)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
