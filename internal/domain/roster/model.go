package roster

import (
	"slices"
	"time"
)

// Team is a named roster with a player capacity and location metadata.
type Team struct {
	ID          string
	Name        string
	PlayerCount int
	Region      string
	Country     string
	Players     []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamInput carries the editable fields of a team.
type TeamInput struct {
	Name        string
	PlayerCount int
	Region      string
	Country     string
}

func (t Team) Input() TeamInput {
	return TeamInput{
		Name:        t.Name,
		PlayerCount: t.PlayerCount,
		Region:      t.Region,
		Country:     t.Country,
	}
}

func (t Team) HasPlayer(playerID int64) bool {
	return slices.Contains(t.Players, playerID)
}

// IsFull reports whether the roster reached its capacity.
func (t Team) IsFull() bool {
	return len(t.Players) >= t.PlayerCount
}

func (t Team) OpenSlots() int {
	if slots := t.PlayerCount - len(t.Players); slots > 0 {
		return slots
	}
	return 0
}

// Clone returns a copy that shares no memory with t.
func (t Team) Clone() Team {
	copied := t
	copied.Players = slices.Clone(t.Players)
	if copied.Players == nil {
		copied.Players = []int64{}
	}
	return copied
}

func CloneTeams(teams []Team) []Team {
	out := make([]Team, 0, len(teams))
	for _, item := range teams {
		out = append(out, item.Clone())
	}
	return out
}
