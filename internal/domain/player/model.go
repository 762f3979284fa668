package player

import (
	"fmt"
	"strings"
)

// Club is the real-world team a player belongs to at the source.
type Club struct {
	ID           int64
	FullName     string
	Abbreviation string
}

// Player is an externally sourced athlete identified by integer id.
type Player struct {
	ID        int64
	FirstName string
	LastName  string
	Position  string
	Club      *Club
}

func (p Player) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ClubName returns the source club, or "No team" for free agents.
func (p Player) ClubName() string {
	if p.Club == nil || strings.TrimSpace(p.Club.FullName) == "" {
		return "No team"
	}
	return p.Club.FullName
}

func (p Player) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("player id must be greater than zero")
	}
	return nil
}

// Page is one cursor-paginated slice of the player catalogue.
// NextCursor is nil on the last page.
type Page struct {
	Data       []Player
	NextCursor *int64
}

func (p Page) HasNext() bool {
	return p.NextCursor != nil
}
