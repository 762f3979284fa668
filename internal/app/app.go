package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-manager/external/balldontlie"
	"github.com/riskibarqy/roster-manager/internal/config"
	"github.com/riskibarqy/roster-manager/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/roster-manager/internal/platform/id"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/riskibarqy/roster-manager/internal/platform/resilience"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

// App holds the wired HTTP server and the background work it depends on.
type App struct {
	Server   *http.Server
	Roster   *usecase.RosterStore
	Sessions *usecase.SessionService

	unsubscribe  func()
	closeStorage func() error
}

// New opens storage, restores the roster and builds the HTTP server.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	provider, closeStorage, err := openProvider(ctx, cfg, logger.Named("storage"))
	if err != nil {
		return nil, err
	}

	ids := idgen.NewUUIDGenerator()
	rosterStore := usecase.NewRosterStore(provider, usecase.RosterStoreConfig{
		StorageKey: cfg.RosterStorageKey,
	}, ids, logger)
	unsubscribe := rosterStore.Subscribe(rosterEventLogger(logger.Named("roster_events")))
	if err := rosterStore.Load(ctx); err != nil {
		unsubscribe()
		_ = closeStorage()
		return nil, fmt.Errorf("load roster: %w", err)
	}

	playerClient := balldontlie.NewClient(balldontlie.ClientConfig{
		BaseURL:    cfg.PlayersBaseURL,
		APIKey:     cfg.PlayersAPIKey,
		Timeout:    cfg.PlayersTimeout,
		MaxRetries: cfg.PlayersMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.PlayersCircuitEnabled,
			FailureThreshold: cfg.PlayersCircuitFailureCount,
			OpenTimeout:      cfg.PlayersCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PlayersCircuitHalfOpenMaxReq,
		},
	})
	playerService := usecase.NewPlayerService(playerClient, rosterStore, usecase.PlayerServiceConfig{
		PageSize:       cfg.PlayersPageSize,
		ResolveWorkers: cfg.PlayersResolveWorkers,
	}, logger)
	sessionService := usecase.NewSessionService(usecase.SessionConfig{
		TTL:                 cfg.SessionTTL,
		ResetRosterOnLogout: cfg.SessionResetOnLogout,
	}, rosterStore, ids, clockwork.NewRealClock(), logger)
	sessionService.OnSessionEnd(playerService.DropFeed)

	handler := httpapi.NewHandler(rosterStore, playerService, sessionService, httpapi.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
	}, logger)
	router := httpapi.NewRouter(handler, sessionService, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Roster:       rosterStore,
		Sessions:     sessionService,
		unsubscribe:  unsubscribe,
		closeStorage: closeStorage,
	}, nil
}

// Close releases the storage backend. The HTTP server must be shut down first.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.closeStorage == nil {
		return nil
	}
	return a.closeStorage()
}

func rosterEventLogger(logger *logging.Logger) func(usecase.RosterEvent) {
	return func(event usecase.RosterEvent) {
		logger.Debug("roster changed",
			"kind", string(event.Kind),
			"seq", event.Seq,
			"team_id", event.Team.ID,
			"player_id", event.PlayerID,
			"previous_team_id", event.PreviousTeamID,
			"team_count", event.TeamCount,
		)
	}
}
