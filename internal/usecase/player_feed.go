package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/riskibarqy/roster-manager/internal/domain/player"
)

const DefaultPlayerPageSize = 10

// PlayerFeed accumulates cursor pages for an infinite-scroll list. A failed
// fetch leaves the feed unchanged so the caller can retry.
type PlayerFeed struct {
	source  player.Source
	perPage int

	mu         sync.Mutex
	players    []player.Player
	nextCursor *int64
	started    bool
	fetching   bool
}

func NewPlayerFeed(source player.Source, perPage int) *PlayerFeed {
	if perPage <= 0 {
		perPage = DefaultPlayerPageSize
	}
	return &PlayerFeed{source: source, perPage: perPage}
}

// NeedsMore reports whether the last visible row reached the end of the loaded
// players while another page is available and no fetch is in flight.
func (f *PlayerFeed) NeedsMore(lastVisibleIndex int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fetching {
		return false
	}
	if !f.started {
		return true
	}
	return lastVisibleIndex >= len(f.players)-1 && f.nextCursor != nil
}

// FetchNext loads the following page and returns how many players it added.
// It returns 0 without error when the feed is exhausted or a fetch is running.
func (f *PlayerFeed) FetchNext(ctx context.Context) (int, error) {
	f.mu.Lock()
	if f.fetching || (f.started && f.nextCursor == nil) {
		f.mu.Unlock()
		return 0, nil
	}
	var cursor int64
	if f.nextCursor != nil {
		cursor = *f.nextCursor
	}
	f.fetching = true
	f.mu.Unlock()

	page, err := f.source.FetchPage(ctx, cursor, f.perPage)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetching = false
	if err != nil {
		return 0, fmt.Errorf("%w: fetch players cursor=%d: %w", ErrDependencyUnavailable, cursor, err)
	}

	f.started = true
	f.players = append(f.players, page.Data...)
	f.nextCursor = nil
	if page.NextCursor != nil {
		next := *page.NextCursor
		f.nextCursor = &next
	}
	return len(page.Data), nil
}

// Ensure fetches the next page when lastVisibleIndex calls for it.
func (f *PlayerFeed) Ensure(ctx context.Context, lastVisibleIndex int) error {
	if !f.NeedsMore(lastVisibleIndex) {
		return nil
	}
	_, err := f.FetchNext(ctx)
	return err
}

func (f *PlayerFeed) Players() []player.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.players)
}

func (f *PlayerFeed) HasNext() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.started || f.nextCursor != nil
}

func (f *PlayerFeed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.players = nil
	f.nextCursor = nil
	f.started = false
}
