package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/roster-manager/internal/config"
	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

func testConfig(driver string) config.Config {
	return config.Config{
		AppEnv:            config.EnvDev,
		HTTPAddr:          ":0",
		ReadTimeout:       time.Second,
		WriteTimeout:      time.Second,
		StorageDriver:     driver,
		RosterStorageKey:  "teams",
		PlayersPageSize:   10,
		PlayersTimeout:    time.Second,
		SessionTTL:        time.Hour,
		SessionCookieName: "user",
	}
}

type envelope struct {
	Data struct {
		Token string `json:"token"`
		ID    string `json:"id"`
	} `json:"data"`
}

func do(t *testing.T, handler http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var out envelope
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, rec.Body.String())
		}
	}
	return rec, out
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := testConfig(config.StorageMemory)
	cfg.HTTPAddr = ""
	if _, err := New(t.Context(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	if _, err := New(t.Context(), testConfig("etcd"), logging.NewNop()); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}

func TestNew_MemoryServesRoster(t *testing.T) {
	application, err := New(t.Context(), testConfig(config.StorageMemory), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = application.Close() })

	handler := application.Server.Handler
	rec, login := do(t, handler, http.MethodPost, "/v1/session", "", `{"username":"coach"}`)
	if rec.Code != http.StatusCreated || login.Data.Token == "" {
		t.Fatalf("login failed: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, handler, http.MethodPost, "/v1/teams", login.Data.Token,
		`{"name":"Night Owls","player_count":5,"region":"West","country":"USA"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := len(application.Roster.Teams()); got != 1 {
		t.Fatalf("expected one team in store, got %d", got)
	}
}

func TestNew_SQLiteSurvivesRestart(t *testing.T) {
	cfg := testConfig(config.StorageSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "roster.db")

	first, err := New(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	team, err := first.Roster.Create(t.Context(), roster.TeamInput{
		Name:        "Harbor Hawks",
		PlayerCount: 3,
		Region:      "East",
		Country:     "Canada",
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close first app: %v", err)
	}

	second, err := New(t.Context(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen app: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	restored, ok := second.Roster.Team(team.ID)
	if !ok || restored.Name != team.Name {
		t.Fatalf("team not restored: %+v ok=%v", restored, ok)
	}
}

func TestRosterEventLogger(t *testing.T) {
	var buf bytes.Buffer
	log := rosterEventLogger(logging.NewJSONWriter(logging.LevelDebug, &buf))

	log(usecase.RosterEvent{Kind: usecase.EventPlayerAssigned, Seq: 7, PlayerID: 23, TeamCount: 2})

	out := buf.String()
	for _, want := range []string{`"msg":"roster changed"`, `"kind":"player_assigned"`, `"player_id":23`, `"seq":7`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log line, got %s", want, out)
		}
	}
}

func TestClose_NilApp(t *testing.T) {
	var application *App
	if err := application.Close(); err != nil {
		t.Fatalf("close nil app: %v", err)
	}
}
