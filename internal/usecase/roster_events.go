package usecase

import (
	"sync"

	"github.com/riskibarqy/roster-manager/internal/domain/roster"
)

type RosterEventKind string

const (
	EventRosterLoaded   RosterEventKind = "loaded"
	EventTeamCreated    RosterEventKind = "team_created"
	EventTeamUpdated    RosterEventKind = "team_updated"
	EventTeamDeleted    RosterEventKind = "team_deleted"
	EventPlayerAssigned RosterEventKind = "player_assigned"
	EventPlayerRemoved  RosterEventKind = "player_removed"
	EventRosterReset    RosterEventKind = "reset"
)

// RosterEvent describes one committed mutation. Team is a snapshot of the
// affected team after the change (before it, for deletions). Seq increases
// with commit order.
type RosterEvent struct {
	Kind           RosterEventKind
	Seq            uint64
	Team           roster.Team
	PlayerID       int64
	PreviousTeamID string
	TeamCount      int
}

type observerSet struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]func(RosterEvent)
}

func (o *observerSet) add(fn func(RosterEvent)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.observers == nil {
		o.observers = make(map[int]func(RosterEvent))
	}
	o.nextID++
	id := o.nextID
	o.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}

func (o *observerSet) snapshot() []func(RosterEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]func(RosterEvent), 0, len(o.observers))
	for id := 1; id <= o.nextID; id++ {
		if fn, ok := o.observers[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
