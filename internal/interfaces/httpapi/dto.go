package httpapi

import (
	"time"

	"github.com/riskibarqy/roster-manager/internal/domain/player"
	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/domain/user"
	"github.com/riskibarqy/roster-manager/internal/usecase"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
}

type teamRequest struct {
	Name        string `json:"name" validate:"required"`
	PlayerCount int    `json:"player_count" validate:"required"`
	Region      string `json:"region" validate:"required"`
	Country     string `json:"country" validate:"required"`
}

// updateTeamRequest leaves the roster untouched when players is omitted.
type updateTeamRequest struct {
	Name        string   `json:"name" validate:"required"`
	PlayerCount int      `json:"player_count" validate:"required"`
	Region      string   `json:"region" validate:"required"`
	Country     string   `json:"country" validate:"required"`
	Players     *[]int64 `json:"players"`
}

type sessionDTO struct {
	Token     string    `json:"token,omitempty"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type teamDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PlayerCount int       `json:"player_count"`
	Region      string    `json:"region"`
	Country     string    `json:"country"`
	Players     []int64   `json:"players"`
	OpenSlots   int       `json:"open_slots"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type teamDeletedDTO struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type nameAvailabilityDTO struct {
	Name      string `json:"name"`
	ExcludeID string `json:"exclude_id,omitempty"`
	Available bool   `json:"available"`
}

type capacityDTO struct {
	TeamID      string `json:"team_id"`
	PlayerCount int    `json:"player_count"`
	Assigned    int    `json:"assigned"`
	OpenSlots   int    `json:"open_slots"`
	CanAccept   bool   `json:"can_accept"`
}

type clubDTO struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Abbreviation string `json:"abbreviation"`
}

type playerDTO struct {
	ID          int64    `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	DisplayName string   `json:"display_name"`
	Position    string   `json:"position"`
	ClubName    string   `json:"club_name"`
	Club        *clubDTO `json:"club,omitempty"`
	TeamID      string   `json:"team_id,omitempty"`
	TeamName    string   `json:"team_name,omitempty"`
	Assigned    bool     `json:"assigned"`
}

type playerPageDTO struct {
	Players    []playerDTO `json:"players"`
	NextCursor *int64      `json:"next_cursor"`
}

type playerFeedDTO struct {
	Players []playerDTO `json:"players"`
	HasNext bool        `json:"has_next"`
}

type teamRosterDTO struct {
	Team             teamDTO     `json:"team"`
	Players          []playerDTO `json:"players"`
	MissingPlayerIDs []int64     `json:"missing_player_ids"`
}

type playerRemovedDTO struct {
	TeamID   string `json:"team_id"`
	PlayerID int64  `json:"player_id"`
}

func (r teamRequest) toInput() roster.TeamInput {
	return roster.TeamInput{
		Name:        r.Name,
		PlayerCount: r.PlayerCount,
		Region:      r.Region,
		Country:     r.Country,
	}
}

func sessionToDTO(s user.Session, withToken bool) sessionDTO {
	out := sessionDTO{
		Username:  s.Username,
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if withToken {
		out.Token = s.Token
	}
	return out
}

func teamToDTO(t roster.Team) teamDTO {
	players := t.Players
	if players == nil {
		players = []int64{}
	}
	return teamDTO{
		ID:          t.ID,
		Name:        t.Name,
		PlayerCount: t.PlayerCount,
		Region:      t.Region,
		Country:     t.Country,
		Players:     players,
		OpenSlots:   t.OpenSlots(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func teamsToDTO(teams []roster.Team) []teamDTO {
	out := make([]teamDTO, 0, len(teams))
	for _, item := range teams {
		out = append(out, teamToDTO(item))
	}
	return out
}

func playerToDTO(p player.Player) playerDTO {
	out := playerDTO{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		DisplayName: p.DisplayName(),
		Position:    p.Position,
		ClubName:    p.ClubName(),
	}
	if p.Club != nil {
		out.Club = &clubDTO{
			ID:           p.Club.ID,
			FullName:     p.Club.FullName,
			Abbreviation: p.Club.Abbreviation,
		}
	}
	return out
}

func listingsToDTO(rows []usecase.PlayerListing) []playerDTO {
	out := make([]playerDTO, 0, len(rows))
	for _, row := range rows {
		item := playerToDTO(row.Player)
		item.TeamID = row.TeamID
		item.TeamName = row.TeamName
		item.Assigned = row.Assigned()
		out = append(out, item)
	}
	return out
}
