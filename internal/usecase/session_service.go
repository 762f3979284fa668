package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/roster-manager/internal/domain/user"
	idgen "github.com/riskibarqy/roster-manager/internal/platform/id"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

type SessionConfig struct {
	TTL                 time.Duration
	ResetRosterOnLogout bool
}

type rosterResetter interface {
	Reset(ctx context.Context) error
}

// SessionService issues and verifies the opaque tokens that gate the roster.
type SessionService struct {
	cfg    SessionConfig
	roster rosterResetter
	idGen  idgen.Generator
	clock  clockwork.Clock
	logger *logging.Logger

	mu       sync.Mutex
	sessions map[string]user.Session
	onEnd    []func(token string)
}

func NewSessionService(
	cfg SessionConfig,
	roster rosterResetter,
	idGen idgen.Generator,
	clock clockwork.Clock,
	logger *logging.Logger,
) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SessionService{
		cfg:      cfg,
		roster:   roster,
		idGen:    idGen,
		clock:    clock,
		logger:   logger.Named("session_service"),
		sessions: make(map[string]user.Session),
	}
}

func (s *SessionService) Login(ctx context.Context, username string) (user.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Login")
	defer span.End()

	username = strings.TrimSpace(username)
	if err := user.ValidateUsername(username); err != nil {
		return user.Session{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	token, err := s.idGen.NewID()
	if err != nil {
		return user.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	now := s.clock.Now().UTC()
	session := user.Session{
		Token:     token,
		Username:  username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session opened", "username", username, "expires_at", session.ExpiresAt.Format(time.RFC3339))
	return session, nil
}

// OnSessionEnd registers fn for every token that stops being valid, whether
// through logout, a failed expiry check or the janitor. fn runs without the
// service lock held.
func (s *SessionService) OnSessionEnd(fn func(token string)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onEnd = append(s.onEnd, fn)
	s.mu.Unlock()
}

func (s *SessionService) Verify(ctx context.Context, token string) (user.Session, error) {
	_, span := startUsecaseSpan(ctx, "usecase.SessionService.Verify")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return user.Session{}, fmt.Errorf("%w: missing session token", ErrUnauthorized)
	}

	s.mu.Lock()
	session, ok := s.sessions[token]
	if !ok {
		s.mu.Unlock()
		return user.Session{}, fmt.Errorf("%w: unknown session", ErrUnauthorized)
	}
	if session.Expired(s.clock.Now()) {
		delete(s.sessions, token)
		hooks := s.onEnd
		s.mu.Unlock()
		notifySessionEnd(hooks, token)
		return user.Session{}, fmt.Errorf("%w: session expired", ErrUnauthorized)
	}
	s.mu.Unlock()
	return session, nil
}

// Logout ends the session. With ResetRosterOnLogout the shared roster is
// cleared only when no other live session remains.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.Logout")
	defer span.End()

	token = strings.TrimSpace(token)
	now := s.clock.Now()
	s.mu.Lock()
	session, ok := s.sessions[token]
	delete(s.sessions, token)
	others := s.liveCountLocked(now)
	hooks := s.onEnd
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown session", ErrUnauthorized)
	}
	notifySessionEnd(hooks, token)

	s.logger.InfoContext(ctx, "session closed", "username", session.Username, "live_sessions", others)
	if !s.cfg.ResetRosterOnLogout || s.roster == nil {
		return nil
	}
	if others > 0 {
		s.logger.InfoContext(ctx, "roster kept, other sessions still live", "live_sessions", others)
		return nil
	}
	if err := s.roster.Reset(ctx); err != nil {
		return fmt.Errorf("reset roster on logout: %w", err)
	}
	return nil
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (s *SessionService) PurgeExpired() int {
	now := s.clock.Now()

	s.mu.Lock()
	var expired []string
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			expired = append(expired, token)
		}
	}
	hooks := s.onEnd
	s.mu.Unlock()

	for _, token := range expired {
		notifySessionEnd(hooks, token)
	}
	return len(expired)
}

func (s *SessionService) liveCountLocked(now time.Time) int {
	live := 0
	for _, session := range s.sessions {
		if !session.Expired(now) {
			live++
		}
	}
	return live
}

func notifySessionEnd(hooks []func(string), token string) {
	for _, fn := range hooks {
		fn(token)
	}
}

// RunJanitor purges expired sessions on every tick until ctx is done.
func (s *SessionService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if removed := s.PurgeExpired(); removed > 0 {
				s.logger.Info("expired sessions purged", "count", removed)
			}
		}
	}
}
