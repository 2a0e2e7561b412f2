package sportsdata

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ngreenfield/football-pickem/internal/platform/logging"
	"github.com/ngreenfield/football-pickem/internal/platform/resilience"
	"github.com/ngreenfield/football-pickem/internal/usecase"
)

func newTestClient(srv *httptest.Server, maxRetries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		APIKey:         "feed-key",
		MaxRetries:     maxRetries,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
}

func TestClientFetchSeasonSchedule_ParsesAndFiltersRows(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Schedules/2025REG" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "feed-key" {
			t.Fatalf("unexpected api key header: %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"GameKey":"202501KCBUF","Week":1,"HomeTeam":"kc","AwayTeam":"BUF","DateTime":"2025-09-07T17:00:00","Status":"Scheduled","IsClosed":false},
			{"GameKey":"202501BYEKC","Week":1,"HomeTeam":"BYE","AwayTeam":"KC","Status":"Scheduled"},
			{"GameKey":"","Week":1,"HomeTeam":"SF","AwayTeam":"SEA","Status":"Scheduled"},
			{"GameKey":"202500SFSEA","Week":0,"HomeTeam":"SF","AwayTeam":"SEA","Status":"Scheduled"}
		]`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{Enabled: false})

	rows, err := client.FetchSeasonSchedule(t.Context(), "2025REG")
	if err != nil {
		t.Fatalf("fetch schedule failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 mapped row, got %d", len(rows))
	}

	row := rows[0]
	if row.ExternalID != "202501KCBUF" {
		t.Fatalf("unexpected external id: %s", row.ExternalID)
	}
	if row.HomeTeamCode != "KC" || row.AwayTeamCode != "BUF" {
		t.Fatalf("team codes not normalized: %s vs %s", row.HomeTeamCode, row.AwayTeamCode)
	}
	want := time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC)
	if !row.KickoffAt.Equal(want) {
		t.Fatalf("unexpected kickoff: %v", row.KickoffAt)
	}
}

func TestClientFetchWeekScores_CarriesScores(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ScoresByWeek/2025REG/1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"GameKey":"202501KCBUF","Week":1,"HomeTeam":"KC","AwayTeam":"BUF","HomeScore":27,"AwayScore":20,"Status":"F/OT","IsClosed":true}
		]`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{Enabled: false})

	rows, err := client.FetchWeekScores(t.Context(), "2025REG", 1)
	if err != nil {
		t.Fatalf("fetch scores failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.HomeScore == nil || *row.HomeScore != 27 || row.AwayScore == nil || *row.AwayScore != 20 {
		t.Fatalf("scores not carried: %+v", row)
	}
	if row.Status != "F/OT" || !row.Closed {
		t.Fatalf("status not carried: %+v", row)
	}
}

func TestClientExecuteRequest_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream blew up", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := newTestClient(srv, 1, resilience.CircuitBreakerConfig{Enabled: false})

	if _, err := client.FetchSeasonSchedule(t.Context(), "2025REG"); err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestClientExecuteRequest_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	client := newTestClient(srv, 2, resilience.CircuitBreakerConfig{Enabled: false})

	_, err := client.FetchSeasonSchedule(t.Context(), "2025REG")
	if err == nil || !strings.Contains(err.Error(), "status=403") {
		t.Fatalf("expected status=403 error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientDoJSON_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "still down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.FetchSeasonSchedule(t.Context(), "2025REG"); err == nil {
		t.Fatal("expected first call to fail")
	}

	_, err := client.FetchSeasonSchedule(t.Context(), "2025REG")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once the circuit opened, got %v", err)
	}
}
