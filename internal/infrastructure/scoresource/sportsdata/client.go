package sportsdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/ngreenfield/football-pickem/internal/platform/logging"
	"github.com/ngreenfield/football-pickem/internal/platform/resilience"
	"github.com/ngreenfield/football-pickem/internal/usecase"
)

const (
	defaultBaseURL = "https://api.sportsdata.io/v3/nfl/scores/json"

	apiKeyHeader = "Ocp-Apim-Subscription-Key"

	// The feed reports kickoff times without a zone offset.
	feedDateTimeLayout = "2006-01-02T15:04:05"

	maxResponseBytes = 6 << 20
)

var errSportsDataTransient = crerr.New("sportsdata transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches NFL schedules and scores from SportsData.io.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// feedGame mirrors the fields of one feed row this service consumes.
// Scores stay pointers because the feed sends null until kickoff.
type feedGame struct {
	GameKey  string `json:"GameKey"`
	Week     int    `json:"Week"`
	HomeTeam string `json:"HomeTeam"`
	AwayTeam string `json:"AwayTeam"`
	Date     string `json:"Date"`
	DateTime string `json:"DateTime"`
	Status   string `json:"Status"`
	IsClosed bool   `json:"IsClosed"`

	HomeScore *int `json:"HomeScore"`
	AwayScore *int `json:"AwayScore"`
}

func (c *Client) FetchSeasonSchedule(ctx context.Context, season string) ([]usecase.ExternalGame, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}

	var rows []feedGame
	if err := c.doJSON(ctx, "/Schedules/"+season, &rows); err != nil {
		return nil, fmt.Errorf("fetch schedule season=%s: %w", season, err)
	}

	return c.mapFeedGames(ctx, rows), nil
}

func (c *Client) FetchWeekScores(ctx context.Context, season string, weekNumber int) ([]usecase.ExternalGame, error) {
	season = strings.TrimSpace(season)
	if season == "" {
		return nil, fmt.Errorf("season is required")
	}
	if weekNumber < 1 {
		return nil, fmt.Errorf("week number must be greater than zero")
	}

	path := "/ScoresByWeek/" + season + "/" + strconv.Itoa(weekNumber)
	var rows []feedGame
	if err := c.doJSON(ctx, path, &rows); err != nil {
		return nil, fmt.Errorf("fetch scores season=%s week=%d: %w", season, weekNumber, err)
	}

	return c.mapFeedGames(ctx, rows), nil
}

// mapFeedGames drops rows that cannot represent a playable game. Bye-week
// rows arrive as games against the placeholder opponent "BYE".
func (c *Client) mapFeedGames(ctx context.Context, rows []feedGame) []usecase.ExternalGame {
	out := make([]usecase.ExternalGame, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.GameKey) == "" {
			continue
		}
		if isByeTeam(row.HomeTeam) || isByeTeam(row.AwayTeam) {
			continue
		}
		if row.Week < 1 {
			c.logger.WarnContext(ctx, "dropping feed row with invalid week", "game_key", row.GameKey, "week", row.Week)
			continue
		}

		out = append(out, usecase.ExternalGame{
			ExternalID:   strings.TrimSpace(row.GameKey),
			WeekNumber:   row.Week,
			HomeTeamCode: strings.ToUpper(strings.TrimSpace(row.HomeTeam)),
			AwayTeamCode: strings.ToUpper(strings.TrimSpace(row.AwayTeam)),
			KickoffAt:    parseFeedKickoff(row.DateTime, row.Date),
			HomeScore:    row.HomeScore,
			AwayScore:    row.AwayScore,
			Status:       row.Status,
			Closed:       row.IsClosed,
		})
	}

	return out
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sportsdata circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: score feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && stderrors.Is(reqErr, errSportsDataTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode feed payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errSportsDataTransient, err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errSportsDataTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else if isRetryableStatus(resp.StatusCode) {
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errSportsDataTransient, resp.StatusCode, abbreviateBody(raw))
			} else {
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "sportsdata request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseBytes)); err != nil {
		return nil, err
	}

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	return out, nil
}

// parseFeedKickoff prefers the minute-precision DateTime field, falling
// back to the date-only field for games far in the future.
func parseFeedKickoff(dateTime, date string) time.Time {
	for _, value := range []string{dateTime, date} {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if parsed, err := time.Parse(feedDateTimeLayout, value); err == nil {
			return parsed.UTC()
		}
		if parsed, err := time.Parse(time.RFC3339, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func isByeTeam(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), "BYE")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
