package httpapi

import (
	"net/http"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.sessionService.Login(ctx, req.Username)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	writeSuccess(ctx, w, http.StatusCreated, sessionToDTO(session, true))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSession")
	defer span.End()

	session, ok := sessionFromContext(ctx)
	if !ok {
		writeInternalError(ctx, w)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sessionToDTO(session, false))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Logout")
	defer span.End()

	session, ok := sessionFromContext(ctx)
	if !ok {
		writeInternalError(ctx, w)
		return
	}

	h.clearSessionCookie(w)
	if err := h.sessionService.Logout(ctx, session.Token); err != nil {
		h.writeMutationError(ctx, w, "logout", err, nil)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "logged_out"})
}
