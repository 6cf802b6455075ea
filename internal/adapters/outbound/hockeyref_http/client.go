// Package hockeyref_http downloads the season schedule from a
// Hockey-Reference style games page and parses its HTML schedule table.
package hockeyref_http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/charleschow/nhl-montecarlo/internal/league"
	"github.com/charleschow/nhl-montecarlo/internal/telemetry"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// Stats sites ban aggressive crawlers; one request every few
		// seconds is plenty for a page we fetch once per run.
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
	}
}

// FetchSchedule downloads and parses the full season schedule. The season
// is keyed by its end year (the 2025-26 season is NHL_2026).
func (c *Client) FetchSchedule(ctx context.Context, seasonEndYear int) (league.Schedule, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/leagues/NHL_%d_games.html", c.baseURL, seasonEndYear)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()
	telemetry.Metrics.HTTPFetches.Inc()

	if resp.StatusCode != http.StatusOK {
		telemetry.Metrics.FetchErrors.Inc()
		return nil, fmt.Errorf("schedule page: HTTP %d", resp.StatusCode)
	}

	sched, err := ParseSchedule(resp.Body)
	if err != nil {
		return nil, err
	}
	telemetry.Infof("hockeyref_http: GET %s -> %d games, %d played (%s)",
		url, len(sched), len(sched.PlayedGames()), time.Since(start))
	return sched, nil
}

// ParseSchedule reads the schedule table out of a games page. Rows carry
// date, visitor, visitor goals, home, home goals and the OT/SO flag; a game
// counts as played once both goal cells are filled in.
func ParseSchedule(r io.Reader) (league.Schedule, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse schedule html: %w", err)
	}

	table := findTable(doc)
	if table == nil {
		return nil, fmt.Errorf("schedule table not found, page layout changed")
	}

	var sched league.Schedule
	for _, row := range findAll(table, "tr") {
		cells := findCells(row)
		if len(cells) < 8 {
			continue
		}

		date := text(cells[0])
		if !strings.Contains(date, "-") {
			continue // header or separator row
		}
		if len(date) > 10 {
			date = date[:10]
		}

		away := league.ResolveTeam(text(cells[2]))
		home := league.ResolveTeam(text(cells[4]))
		ag, _ := strconv.Atoi(text(cells[3]))
		hg, _ := strconv.Atoi(text(cells[5]))
		ot := text(cells[6])
		if ot != "OT" && ot != "SO" {
			ot = ""
		}

		sched = append(sched, league.ScheduledGame{
			Date:      date,
			Home:      home,
			Away:      away,
			HomeGoals: hg,
			AwayGoals: ag,
			Overtime:  ot,
			Played:    hg > 0 && ag > 0,
		})
	}

	sched.SortByDate()
	return sched, nil
}

// findTable locates the table with id="schedule", falling back to the first
// table classed "stats_table".
func findTable(n *html.Node) *html.Node {
	var byID, byClass *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if attr(n, "id") == "schedule" && byID == nil {
				byID = n
			}
			if strings.Contains(attr(n, "class"), "stats_table") && byClass == nil {
				byClass = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	if byID != nil {
		return byID
	}
	return byClass
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// findCells returns a row's th and td children in document order.
func findCells(row *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "th" || n.Data == "td") {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
