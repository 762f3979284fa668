package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/roster-manager/internal/domain/player"
	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
)

const defaultResolveWorkers = 4

type PlayerServiceConfig struct {
	PageSize       int
	ResolveWorkers int
}

type rosterReader interface {
	Team(teamID string) (roster.Team, bool)
	FindTeamOfPlayer(playerID int64) (roster.Team, bool)
}

// PlayerListing is a catalogue row together with the team holding the player.
type PlayerListing struct {
	Player   player.Player
	TeamID   string
	TeamName string
}

func (l PlayerListing) Assigned() bool {
	return l.TeamID != ""
}

type PlayerListingPage struct {
	Players    []PlayerListing
	NextCursor *int64
}

type FeedWindow struct {
	Players []PlayerListing
	HasNext bool
}

type TeamRoster struct {
	Team    roster.Team
	Players []player.Player
	Missing []int64
}

// PlayerService joins the external catalogue with roster assignments.
type PlayerService struct {
	source player.Source
	roster rosterReader
	cfg    PlayerServiceConfig
	logger *logging.Logger

	feedsMu sync.Mutex
	feeds   map[string]*PlayerFeed
}

func NewPlayerService(source player.Source, roster rosterReader, cfg PlayerServiceConfig, logger *logging.Logger) *PlayerService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPlayerPageSize
	}
	if cfg.ResolveWorkers <= 0 {
		cfg.ResolveWorkers = defaultResolveWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		source: source,
		roster: roster,
		cfg:    cfg,
		logger: logger.Named("player_service"),
		feeds:  make(map[string]*PlayerFeed),
	}
}

func (s *PlayerService) ListPage(ctx context.Context, cursor int64) (PlayerListingPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPage")
	defer span.End()

	if cursor < 0 {
		return PlayerListingPage{}, fmt.Errorf("%w: cursor must not be negative", ErrInvalidInput)
	}

	page, err := s.source.FetchPage(ctx, cursor, s.cfg.PageSize)
	if err != nil {
		return PlayerListingPage{}, fmt.Errorf("%w: fetch players cursor=%d: %w", ErrDependencyUnavailable, cursor, err)
	}

	return PlayerListingPage{
		Players:    s.annotate(page.Data),
		NextCursor: page.NextCursor,
	}, nil
}

// Feed returns the scroll window kept for key, loading another page when
// lastVisibleIndex reaches the end of what was already fetched.
func (s *PlayerService) Feed(ctx context.Context, key string, lastVisibleIndex int) (FeedWindow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.Feed")
	defer span.End()

	feed := s.feedFor(key)
	if err := feed.Ensure(ctx, lastVisibleIndex); err != nil {
		return FeedWindow{}, err
	}

	return FeedWindow{
		Players: s.annotate(feed.Players()),
		HasNext: feed.HasNext(),
	}, nil
}

func (s *PlayerService) DropFeed(key string) {
	s.feedsMu.Lock()
	defer s.feedsMu.Unlock()
	delete(s.feeds, key)
}

func (s *PlayerService) feedFor(key string) *PlayerFeed {
	s.feedsMu.Lock()
	defer s.feedsMu.Unlock()

	feed, ok := s.feeds[key]
	if !ok {
		feed = NewPlayerFeed(s.source, s.cfg.PageSize)
		s.feeds[key] = feed
	}
	return feed
}

// TeamRoster resolves a team's player ids against the catalogue with a bounded
// worker pool. Players the source no longer knows are reported in Missing.
func (s *PlayerService) TeamRoster(ctx context.Context, teamID string) (TeamRoster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.TeamRoster")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	team, ok := s.roster.Team(teamID)
	if !ok {
		return TeamRoster{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	result := TeamRoster{Team: team, Players: []player.Player{}, Missing: []int64{}}
	if len(team.Players) == 0 {
		return result, nil
	}

	workerCount := min(s.cfg.ResolveWorkers, len(team.Players))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return TeamRoster{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type resolved struct {
		index  int
		player player.Player
		found  bool
		err    error
	}
	results := make(chan resolved, len(team.Players))

	var workers sync.WaitGroup
	for i, playerID := range team.Players {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			item, found, err := s.source.GetPlayer(ctx, playerID)
			results <- resolved{index: i, player: item, found: found, err: err}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return TeamRoster{}, fmt.Errorf("submit player lookup to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	ordered := make([]resolved, len(team.Players))
	var errs []error
	for row := range results {
		ordered[row.index] = row
		if row.err != nil {
			errs = append(errs, row.err)
		}
	}
	if len(errs) > 0 {
		return TeamRoster{}, fmt.Errorf("%w: resolve team=%s: %w", ErrDependencyUnavailable, teamID, errors.Join(errs...))
	}

	for i, row := range ordered {
		if !row.found {
			result.Missing = append(result.Missing, team.Players[i])
			continue
		}
		result.Players = append(result.Players, row.player)
	}
	if len(result.Missing) > 0 {
		s.logger.WarnContext(ctx, "team references unknown players", "team_id", teamID, "missing", len(result.Missing))
	}

	return result, nil
}

func (s *PlayerService) annotate(players []player.Player) []PlayerListing {
	out := make([]PlayerListing, 0, len(players))
	for _, item := range players {
		row := PlayerListing{Player: item}
		if team, ok := s.roster.FindTeamOfPlayer(item.ID); ok {
			row.TeamID = team.ID
			row.TeamName = team.Name
		}
		out = append(out, row)
	}
	return out
}
