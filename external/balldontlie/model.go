package balldontlie

import (
	"strings"

	"github.com/riskibarqy/roster-manager/internal/domain/player"
)

type pageEnvelope struct {
	Data []playerItem `json:"data"`
	Meta pageMeta     `json:"meta"`
}

type pageMeta struct {
	NextCursor *int64 `json:"next_cursor"`
	PerPage    int    `json:"per_page"`
}

type playerEnvelope struct {
	Data playerItem `json:"data"`
}

type playerItem struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Position  string    `json:"position"`
	Team      *teamItem `json:"team"`
}

type teamItem struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

func (p playerItem) toDomain() player.Player {
	out := player.Player{
		ID:        p.ID,
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Position:  strings.TrimSpace(p.Position),
	}
	if p.Team != nil && p.Team.ID > 0 {
		out.Club = &player.Club{
			ID:           p.Team.ID,
			FullName:     strings.TrimSpace(p.Team.FullName),
			Abbreviation: strings.TrimSpace(p.Team.Abbreviation),
		}
	}
	return out
}
