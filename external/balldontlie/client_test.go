package balldontlie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/riskibarqy/roster-manager/internal/platform/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "secret-key",
		Timeout:      2 * time.Second,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg)
}

func TestClient_FetchPage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/players" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "secret-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if r.URL.Query().Get("cursor") != "25" || r.URL.Query().Get("per_page") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": 26, "first_name": "Stephen", "last_name": "Curry", "position": "G",
				 "team": {"id": 10, "abbreviation": "GSW", "full_name": "Golden State Warriors"}},
				{"id": 27, "first_name": "Free", "last_name": "Agent", "position": "", "team": null},
				{"id": 0, "first_name": "Broken"}
			],
			"meta": {"next_cursor": 35, "per_page": 10}
		}`))
	}, nil)

	page, err := client.FetchPage(t.Context(), 25, 10)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("expected invalid row skipped, got %d players", len(page.Data))
	}
	if page.Data[0].ClubName() != "Golden State Warriors" || page.Data[0].DisplayName() != "Stephen Curry" {
		t.Fatalf("unexpected first player: %+v", page.Data[0])
	}
	if page.Data[1].ClubName() != "No team" {
		t.Fatalf("expected free agent without club, got %q", page.Data[1].ClubName())
	}
	if !page.HasNext() || *page.NextCursor != 35 {
		t.Fatalf("unexpected next cursor: %v", page.NextCursor)
	}
}

func TestClient_FetchLastPage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("cursor") {
			t.Errorf("first page must not send a cursor: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data": [], "meta": {"per_page": 10}}`))
	}, nil)

	page, err := client.FetchPage(t.Context(), 0, 0)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if page.HasNext() || len(page.Data) != 0 {
		t.Fatalf("expected empty last page, got %+v", page)
	}
}

func TestClient_GetPlayer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/players/7":
			_, _ = w.Write([]byte(`{"data": {"id": 7, "first_name": "Kevin", "last_name": "Durant", "position": "F"}}`))
		default:
			http.NotFound(w, r)
		}
	}, nil)

	got, found, err := client.GetPlayer(t.Context(), 7)
	if err != nil || !found || got.LastName != "Durant" {
		t.Fatalf("unexpected result: player=%+v found=%v err=%v", got, found, err)
	}

	_, found, err = client.GetPlayer(t.Context(), 8)
	if err != nil || found {
		t.Fatalf("expected not found without error, found=%v err=%v", found, err)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data": [{"id": 1, "first_name": "A", "last_name": "B"}], "meta": {}}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 2
	})

	page, err := client.FetchPage(t.Context(), 0, 5)
	if err != nil {
		t.Fatalf("fetch page: %v", err)
	}
	if len(page.Data) != 1 || calls.Load() != 3 {
		t.Fatalf("expected success on third attempt, calls=%d players=%d", calls.Load(), len(page.Data))
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 3
	})

	_, err := client.FetchPage(t.Context(), 0, 5)
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	if IsUnavailable(err) {
		t.Fatalf("401 must not be classified as unavailable: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchPage(t.Context(), 0, 5); !IsUnavailable(err) {
			t.Fatalf("attempt %d: expected unavailable error, got %v", i+1, err)
		}
	}

	_, err := client.FetchPage(t.Context(), 0, 5)
	if !IsUnavailable(err) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("open circuit must not reach the server, calls=%d", calls.Load())
	}
	if client.breaker.State() != resilience.CircuitStateOpen {
		t.Fatalf("expected open breaker, got %s", client.breaker.State())
	}
}

func TestClient_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, func(cfg *ClientConfig) {
		cfg.MaxRetries = 5
		cfg.RetryBackoff = time.Hour
	})

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.FetchPage(ctx, 0, 5)
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("backoff ignored context cancellation")
	}
}
