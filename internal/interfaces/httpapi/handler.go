package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

const DefaultSessionCookieName = "user"

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

type Handler struct {
	rosterStore    *usecase.RosterStore
	playerService  *usecase.PlayerService
	sessionService *usecase.SessionService
	cookie         CookieConfig
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	rosterStore *usecase.RosterStore,
	playerService *usecase.PlayerService,
	sessionService *usecase.SessionService,
	cookie CookieConfig,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	cookie.Name = strings.TrimSpace(cookie.Name)
	if cookie.Name == "" {
		cookie.Name = DefaultSessionCookieName
	}
	if cookie.SameSite == 0 {
		cookie.SameSite = http.SameSiteLaxMode
	}

	return &Handler{
		rosterStore:    rosterStore,
		playerService:  playerService,
		sessionService: sessionService,
		cookie:         cookie,
		logger:         logger.Named("httpapi"),
		validator:      validator.New(),
	}
}

// CookieName is the cookie RequireSession reads the token from.
func (h *Handler) CookieName() string {
	return h.cookie.Name
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	status := "ok"
	if !h.rosterStore.Loaded() {
		status = "loading"
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, target)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// writeMutationError answers a failed mutation. A persistence failure still
// carries the committed result because the change already happened in memory.
func (h *Handler) writeMutationError(ctx context.Context, w http.ResponseWriter, op string, err error, committed any) {
	if errors.Is(err, usecase.ErrPersistence) {
		h.logger.ErrorContext(ctx, op+" not persisted", "error", err)
		writeErrorWithData(ctx, w, err, committed)
		return
	}

	h.logger.WarnContext(ctx, op+" failed", "error", err)
	writeError(ctx, w, err)
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.SameSite,
	})
}

func parsePlayerID(raw string) (int64, error) {
	playerID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || playerID <= 0 {
		return 0, fmt.Errorf("%w: player id must be a positive integer, got %q", usecase.ErrInvalidInput, raw)
	}
	return playerID, nil
}

func parseOptionalInt(raw string, fallback int64, name string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return value, nil
}
