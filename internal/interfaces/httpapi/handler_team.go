package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, teamsToDTO(h.rosterStore.Teams()))
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	var req teamRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	team, err := h.rosterStore.Create(ctx, req.toInput())
	if err != nil {
		h.writeMutationError(ctx, w, "create team", err, committedTeam(team))
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(team))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	team, ok := h.rosterStore.Team(teamID)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: team=%s", usecase.ErrNotFound, teamID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateTeam")
	defer span.End()

	var req updateTeamRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := roster.Team{
		ID:          r.PathValue("teamID"),
		Name:        req.Name,
		PlayerCount: req.PlayerCount,
		Region:      req.Region,
		Country:     req.Country,
	}
	if req.Players != nil {
		input.Players = append([]int64{}, (*req.Players)...)
	}

	team, err := h.rosterStore.Update(ctx, input)
	if err != nil {
		h.writeMutationError(ctx, w, "update team", err, committedTeam(team))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	teamID := r.PathValue("teamID")
	result := teamDeletedDTO{ID: teamID, Deleted: true}
	if err := h.rosterStore.Delete(ctx, teamID); err != nil {
		h.writeMutationError(ctx, w, "delete team", err, result)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) TeamNameAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamNameAvailability")
	defer span.End()

	query := r.URL.Query()
	name := strings.TrimSpace(query.Get("name"))
	if name == "" {
		writeError(ctx, w, fmt.Errorf("%w: name query parameter is required", usecase.ErrInvalidInput))
		return
	}
	excludeID := strings.TrimSpace(query.Get("exclude_id"))

	writeSuccess(ctx, w, http.StatusOK, nameAvailabilityDTO{
		Name:      name,
		ExcludeID: excludeID,
		Available: h.rosterStore.IsNameUnique(name, excludeID),
	})
}

func (h *Handler) TeamCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TeamCapacity")
	defer span.End()

	teamID := r.PathValue("teamID")
	team, ok := h.rosterStore.Team(teamID)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: team=%s", usecase.ErrNotFound, teamID))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, capacityDTO{
		TeamID:      team.ID,
		PlayerCount: team.PlayerCount,
		Assigned:    len(team.Players),
		OpenSlots:   team.OpenSlots(),
		CanAccept:   h.rosterStore.CanAcceptPlayer(team.ID),
	})
}

func (h *Handler) ListTeamPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamPlayers")
	defer span.End()

	teamID := r.PathValue("teamID")
	resolved, err := h.playerService.TeamRoster(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve team players failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	players := make([]playerDTO, 0, len(resolved.Players))
	for _, item := range resolved.Players {
		row := playerToDTO(item)
		row.TeamID = resolved.Team.ID
		row.TeamName = resolved.Team.Name
		row.Assigned = true
		players = append(players, row)
	}

	writeSuccess(ctx, w, http.StatusOK, teamRosterDTO{
		Team:             teamToDTO(resolved.Team),
		Players:          players,
		MissingPlayerIDs: resolved.Missing,
	})
}

func (h *Handler) AssignPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignPlayer")
	defer span.End()

	playerID, err := parsePlayerID(r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	team, err := h.rosterStore.AssignPlayer(ctx, playerID, r.PathValue("teamID"))
	if err != nil {
		h.writeMutationError(ctx, w, "assign player", err, committedTeam(team))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(team))
}

func (h *Handler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemovePlayer")
	defer span.End()

	playerID, err := parsePlayerID(r.PathValue("playerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teamID := r.PathValue("teamID")
	result := playerRemovedDTO{TeamID: teamID, PlayerID: playerID}
	if err := h.rosterStore.RemovePlayer(ctx, playerID, teamID); err != nil {
		h.writeMutationError(ctx, w, "remove player", err, result)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// committedTeam returns the DTO for a mutation that succeeded in memory, or nil.
func committedTeam(team roster.Team) any {
	if team.ID == "" {
		return nil
	}
	return teamToDTO(team)
}
