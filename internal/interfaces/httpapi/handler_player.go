package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/roster-manager/internal/usecase"
)

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	cursor, err := parseOptionalInt(r.URL.Query().Get("cursor"), 0, "cursor")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.playerService.ListPage(ctx, cursor)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "cursor", cursor, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerPageDTO{
		Players:    listingsToDTO(page.Players),
		NextCursor: page.NextCursor,
	})
}

// PlayerFeed serves the infinite-scroll window kept per session.
func (h *Handler) PlayerFeed(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlayerFeed")
	defer span.End()

	session, ok := sessionFromContext(ctx)
	if !ok {
		writeInternalError(ctx, w)
		return
	}
	lastVisible, err := parseOptionalInt(r.URL.Query().Get("last_visible"), -1, "last_visible")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	window, err := h.playerService.Feed(ctx, session.Token, int(lastVisible))
	if err != nil {
		h.logger.WarnContext(ctx, "player feed failed", "last_visible", lastVisible, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerFeedDTO{
		Players: listingsToDTO(window.Players),
		HasNext: window.HasNext,
	})
}

func (h *Handler) GetPlayerTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerTeam")
	defer span.End()

	playerID, err := parsePlayerID(r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	team, ok := h.rosterStore.FindTeamOfPlayer(playerID)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: player=%d is not on any team", usecase.ErrNotFound, playerID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}
