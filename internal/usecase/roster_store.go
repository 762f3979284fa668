package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/roster-manager/internal/domain/roster"
	idgen "github.com/riskibarqy/roster-manager/internal/platform/id"
	"github.com/riskibarqy/roster-manager/internal/platform/logging"
)

// DefaultRosterStorageKey is the provider key used when none is configured.
const DefaultRosterStorageKey = "teams"

type RosterStoreConfig struct {
	StorageKey string
	Rules      roster.Rules
}

// RosterStore is the in-memory authority over teams and player assignments.
// Every mutation is written through to the provider before the call returns.
// When that write fails the in-memory change is kept and the error wraps ErrPersistence.
type RosterStore struct {
	provider roster.Provider
	key      string
	rules    roster.Rules
	idGen    idgen.Generator
	logger   *logging.Logger
	now      func() time.Time

	mu     sync.RWMutex
	teams  []roster.Team
	loaded bool
	seq    uint64

	observers observerSet
}

func NewRosterStore(
	provider roster.Provider,
	cfg RosterStoreConfig,
	idGen idgen.Generator,
	logger *logging.Logger,
) *RosterStore {
	if logger == nil {
		logger = logging.Default()
	}
	key := strings.TrimSpace(cfg.StorageKey)
	if key == "" {
		key = DefaultRosterStorageKey
	}
	rules := cfg.Rules
	if rules == (roster.Rules{}) {
		rules = roster.DefaultRules()
	}

	return &RosterStore{
		provider: provider,
		key:      key,
		rules:    rules,
		idGen:    idGen,
		logger:   logger.Named("roster_store"),
		now:      time.Now,
		teams:    []roster.Team{},
	}
}

// Subscribe registers fn for every committed mutation. Callbacks run after the
// store lock is released, so they may query the store. Concurrent mutations can
// be delivered out of commit order; RosterEvent.Seq restores it.
func (s *RosterStore) Subscribe(fn func(RosterEvent)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return s.observers.add(fn)
}

// Load restores the collection from the provider. A missing key yields an empty roster.
func (s *RosterStore) Load(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.Load")
	defer span.End()

	payload, found, err := s.provider.Load(ctx, s.key)
	if err != nil {
		return fmt.Errorf("%w: load key=%s: %v", ErrPersistence, s.key, err)
	}

	teams := []roster.Team{}
	if found {
		decoded, err := roster.DecodeSnapshot(payload)
		if err != nil {
			return fmt.Errorf("%w: decode key=%s: %w", ErrPersistence, s.key, err)
		}
		var repairs []string
		teams, repairs = repairLoadedTeams(decoded, s.rules)
		for _, repair := range repairs {
			s.logger.WarnContext(ctx, "roster repaired on load", "key", s.key, "detail", repair)
		}
	}

	s.mu.Lock()
	s.teams = teams
	s.loaded = true
	s.seq++
	event := RosterEvent{Kind: EventRosterLoaded, Seq: s.seq, TeamCount: len(teams)}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "roster loaded", "key", s.key, "found", found, "team_count", event.TeamCount)
	s.publish(event)

	return nil
}

// Loaded reports whether Load has completed successfully.
func (s *RosterStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Teams returns a copy of the collection in insertion order.
func (s *RosterStore) Teams() []roster.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roster.CloneTeams(s.teams)
}

// Team returns a copy of the team with teamID.
func (s *RosterStore) Team(teamID string) (roster.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(strings.TrimSpace(teamID))
	if idx < 0 {
		return roster.Team{}, false
	}
	return s.teams[idx].Clone(), true
}

// IsNameUnique reports whether no team other than excludeID uses name, ignoring case.
func (s *RosterStore) IsNameUnique(name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNameUniqueLocked(name, strings.TrimSpace(excludeID))
}

// FindTeamOfPlayer returns the single team holding playerID, if any.
func (s *RosterStore) FindTeamOfPlayer(playerID int64) (roster.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.ownerIndexLocked(playerID)
	if idx < 0 {
		return roster.Team{}, false
	}
	return s.teams[idx].Clone(), true
}

// CanAcceptPlayer reports whether the team has an open slot; unknown teams cannot.
func (s *RosterStore) CanAcceptPlayer(teamID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(strings.TrimSpace(teamID))
	if idx < 0 {
		return false
	}
	return len(s.teams[idx].Players) < s.teams[idx].PlayerCount
}

func (s *RosterStore) Create(ctx context.Context, input roster.TeamInput) (roster.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.Create")
	defer span.End()

	input = roster.NormalizeInput(input)
	if err := roster.ValidateInput(input, s.rules); err != nil {
		return roster.Team{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	event, err := s.apply(ctx, func() (RosterEvent, error) {
		if !s.isNameUniqueLocked(input.Name, "") {
			return RosterEvent{}, duplicateNameError(input.Name)
		}

		teamID, err := s.idGen.NewID()
		if err != nil {
			return RosterEvent{}, fmt.Errorf("generate team id: %w", err)
		}
		if s.indexLocked(teamID) >= 0 {
			return RosterEvent{}, fmt.Errorf("generate team id: id %s already in use", teamID)
		}

		now := s.now().UTC()
		team := roster.Team{
			ID:          teamID,
			Name:        input.Name,
			PlayerCount: input.PlayerCount,
			Region:      input.Region,
			Country:     input.Country,
			Players:     []int64{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.teams = append(s.teams, team)

		return RosterEvent{Kind: EventTeamCreated, Team: team.Clone(), TeamCount: len(s.teams)}, nil
	})
	if event.Kind == "" {
		return roster.Team{}, err
	}

	s.logger.InfoContext(ctx, "team created",
		"team_id", event.Team.ID,
		"name", event.Team.Name,
		"player_count", event.Team.PlayerCount,
	)
	return event.Team, err
}

// Update replaces the editable fields of an existing team. A nil Players slice
// keeps the current roster; a non-nil one replaces it and must respect the
// capacity and the single-assignment rule.
func (s *RosterStore) Update(ctx context.Context, team roster.Team) (roster.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.Update")
	defer span.End()

	teamID := strings.TrimSpace(team.ID)
	if teamID == "" {
		return roster.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	input := roster.NormalizeInput(team.Input())
	if err := roster.ValidateInput(input, s.rules); err != nil {
		return roster.Team{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	event, err := s.apply(ctx, func() (RosterEvent, error) {
		idx := s.indexLocked(teamID)
		if idx < 0 {
			return RosterEvent{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}
		if !s.isNameUniqueLocked(input.Name, teamID) {
			return RosterEvent{}, duplicateNameError(input.Name)
		}

		current := s.teams[idx]
		players := current.Players
		if team.Players != nil {
			players = dedupePlayers(team.Players)
		}
		if err := roster.ValidatePlayers(players, input.PlayerCount); err != nil {
			return RosterEvent{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		for _, playerID := range players {
			if owner := s.ownerIndexLocked(playerID); owner >= 0 && owner != idx {
				return RosterEvent{}, fmt.Errorf("%w: %w", ErrInvalidInput, &roster.FieldError{
					Field:  "players",
					Err:    roster.ErrPlayerTaken,
					Detail: fmt.Sprintf("player=%d team=%s", playerID, s.teams[owner].ID),
				})
			}
		}

		updated := roster.Team{
			ID:          current.ID,
			Name:        input.Name,
			PlayerCount: input.PlayerCount,
			Region:      input.Region,
			Country:     input.Country,
			Players:     slices.Clone(players),
			CreatedAt:   current.CreatedAt,
			UpdatedAt:   s.now().UTC(),
		}
		s.teams[idx] = updated

		return RosterEvent{Kind: EventTeamUpdated, Team: updated.Clone(), TeamCount: len(s.teams)}, nil
	})
	if event.Kind == "" {
		return roster.Team{}, err
	}

	s.logger.InfoContext(ctx, "team updated", "team_id", event.Team.ID, "name", event.Team.Name)
	return event.Team, err
}

// Delete removes a team; unknown ids always yield ErrNotFound.
func (s *RosterStore) Delete(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.Delete")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	event, err := s.apply(ctx, func() (RosterEvent, error) {
		idx := s.indexLocked(teamID)
		if idx < 0 {
			return RosterEvent{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}

		removed := s.teams[idx]
		s.teams = slices.Delete(s.teams, idx, idx+1)

		return RosterEvent{Kind: EventTeamDeleted, Team: removed.Clone(), TeamCount: len(s.teams)}, nil
	})
	if event.Kind == "" {
		return err
	}

	s.logger.InfoContext(ctx, "team deleted",
		"team_id", event.Team.ID,
		"released_players", len(event.Team.Players),
	)
	return err
}

// AssignPlayer moves playerID onto teamID, removing it from every other team
// in the same pass. Assigning a player the team already holds is a no-op that still persists.
func (s *RosterStore) AssignPlayer(ctx context.Context, playerID int64, teamID string) (roster.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.AssignPlayer")
	defer span.End()

	if playerID <= 0 {
		return roster.Team{}, fmt.Errorf("%w: player id must be greater than zero", ErrInvalidInput)
	}
	teamID = strings.TrimSpace(teamID)

	event, err := s.apply(ctx, func() (RosterEvent, error) {
		target := s.indexLocked(teamID)
		if target < 0 {
			return RosterEvent{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
		}
		if !s.teams[target].HasPlayer(playerID) && s.teams[target].IsFull() {
			return RosterEvent{}, fmt.Errorf("%w: team=%s capacity=%d", ErrCapacityExceeded, teamID, s.teams[target].PlayerCount)
		}

		now := s.now().UTC()
		previousTeamID := ""
		for i := range s.teams {
			item := &s.teams[i]
			if i == target {
				if !item.HasPlayer(playerID) {
					item.Players = append(item.Players, playerID)
					item.UpdatedAt = now
				}
				continue
			}
			if pos := slices.Index(item.Players, playerID); pos >= 0 {
				item.Players = slices.Delete(item.Players, pos, pos+1)
				item.UpdatedAt = now
				previousTeamID = item.ID
			}
		}

		return RosterEvent{
			Kind:           EventPlayerAssigned,
			Team:           s.teams[target].Clone(),
			PlayerID:       playerID,
			PreviousTeamID: previousTeamID,
			TeamCount:      len(s.teams),
		}, nil
	})
	if event.Kind == "" {
		return roster.Team{}, err
	}

	s.logger.InfoContext(ctx, "player assigned",
		"player_id", playerID,
		"team_id", event.Team.ID,
		"previous_team_id", event.PreviousTeamID,
	)
	return event.Team, err
}

// RemovePlayer drops playerID from teamID. Unknown teams and absent players are no-ops.
func (s *RosterStore) RemovePlayer(ctx context.Context, playerID int64, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.RemovePlayer")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	event, err := s.apply(ctx, func() (RosterEvent, error) {
		idx := s.indexLocked(teamID)
		if idx < 0 {
			return RosterEvent{}, nil
		}
		item := &s.teams[idx]
		pos := slices.Index(item.Players, playerID)
		if pos < 0 {
			return RosterEvent{}, nil
		}
		item.Players = slices.Delete(item.Players, pos, pos+1)
		item.UpdatedAt = s.now().UTC()

		return RosterEvent{Kind: EventPlayerRemoved, Team: item.Clone(), PlayerID: playerID, TeamCount: len(s.teams)}, nil
	})
	if event.Kind != "" {
		s.logger.InfoContext(ctx, "player removed", "player_id", playerID, "team_id", teamID)
	}
	return err
}

// Reset empties the roster and persists the empty collection.
func (s *RosterStore) Reset(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterStore.Reset")
	defer span.End()

	_, err := s.apply(ctx, func() (RosterEvent, error) {
		s.teams = []roster.Team{}
		return RosterEvent{Kind: EventRosterReset}, nil
	})
	s.logger.InfoContext(ctx, "roster reset", "key", s.key)
	return err
}

// apply runs fn under the write lock and persists whenever fn succeeds, even
// when it reports no change. A returned event with an empty Kind means fn failed
// or changed nothing; the error then comes from fn or from persisting.
func (s *RosterStore) apply(ctx context.Context, fn func() (RosterEvent, error)) (RosterEvent, error) {
	s.mu.Lock()
	event, err := fn()
	if err != nil {
		s.mu.Unlock()
		return RosterEvent{}, err
	}
	persistErr := s.persistLocked(ctx)
	if event.Kind != "" {
		s.seq++
		event.Seq = s.seq
	}
	s.mu.Unlock()

	if event.Kind != "" {
		s.publish(event)
	}
	return event, persistErr
}

func (s *RosterStore) persistLocked(ctx context.Context) error {
	payload, err := roster.EncodeSnapshot(s.teams, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "encode roster failed", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := s.provider.Save(ctx, s.key, payload); err != nil {
		s.logger.ErrorContext(ctx, "persist roster failed, changes may not survive a reload",
			"key", s.key,
			"team_count", len(s.teams),
			"error", err,
		)
		return fmt.Errorf("%w: save key=%s: %v", ErrPersistence, s.key, err)
	}
	return nil
}

func (s *RosterStore) publish(event RosterEvent) {
	for _, fn := range s.observers.snapshot() {
		fn(event)
	}
}

func (s *RosterStore) indexLocked(teamID string) int {
	if teamID == "" {
		return -1
	}
	return slices.IndexFunc(s.teams, func(t roster.Team) bool { return t.ID == teamID })
}

func (s *RosterStore) ownerIndexLocked(playerID int64) int {
	return slices.IndexFunc(s.teams, func(t roster.Team) bool { return t.HasPlayer(playerID) })
}

func (s *RosterStore) isNameUniqueLocked(name, excludeID string) bool {
	for _, item := range s.teams {
		if excludeID != "" && item.ID == excludeID {
			continue
		}
		if roster.SameName(item.Name, name) {
			return false
		}
	}
	return true
}

func duplicateNameError(name string) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, &roster.FieldError{
		Field:  "name",
		Err:    roster.ErrDuplicateName,
		Detail: name,
	})
}

func dedupePlayers(players []int64) []int64 {
	out := make([]int64, 0, len(players))
	seen := make(map[int64]struct{}, len(players))
	for _, playerID := range players {
		if _, ok := seen[playerID]; ok {
			continue
		}
		seen[playerID] = struct{}{}
		out = append(out, playerID)
	}
	return out
}

// repairLoadedTeams restores the collection invariants on data written by
// older or foreign clients. Earlier teams win conflicts.
func repairLoadedTeams(teams []roster.Team, rules roster.Rules) ([]roster.Team, []string) {
	out := make([]roster.Team, 0, len(teams))
	var repairs []string
	seenIDs := make(map[string]struct{}, len(teams))
	seenNames := make(map[string]struct{}, len(teams))
	owner := make(map[int64]string)

	for _, item := range teams {
		item = item.Clone()
		if item.ID == "" {
			repairs = append(repairs, fmt.Sprintf("dropped team %q without id", item.Name))
			continue
		}
		if _, dup := seenIDs[item.ID]; dup {
			repairs = append(repairs, fmt.Sprintf("dropped duplicate team id=%s", item.ID))
			continue
		}
		seenIDs[item.ID] = struct{}{}

		if _, dup := seenNames[nameKey(item.Name)]; dup {
			renamed := uniqueTeamName(item.Name, seenNames, rules.NameMaxLength)
			repairs = append(repairs, fmt.Sprintf("team=%s duplicate name %q renamed to %q", item.ID, item.Name, renamed))
			item.Name = renamed
		}
		seenNames[nameKey(item.Name)] = struct{}{}

		if item.PlayerCount < rules.MinPlayerCount {
			repairs = append(repairs, fmt.Sprintf("team=%s player count %d raised to %d", item.ID, item.PlayerCount, rules.MinPlayerCount))
			item.PlayerCount = rules.MinPlayerCount
		}
		if item.PlayerCount > rules.MaxPlayerCount {
			repairs = append(repairs, fmt.Sprintf("team=%s player count %d clamped to %d", item.ID, item.PlayerCount, rules.MaxPlayerCount))
			item.PlayerCount = rules.MaxPlayerCount
		}

		kept := make([]int64, 0, len(item.Players))
		for _, playerID := range item.Players {
			if playerID <= 0 || slices.Contains(kept, playerID) {
				repairs = append(repairs, fmt.Sprintf("team=%s dropped invalid or duplicate player=%d", item.ID, playerID))
				continue
			}
			if holder, taken := owner[playerID]; taken {
				repairs = append(repairs, fmt.Sprintf("team=%s dropped player=%d already on team=%s", item.ID, playerID, holder))
				continue
			}
			if len(kept) >= item.PlayerCount {
				repairs = append(repairs, fmt.Sprintf("team=%s dropped player=%d over capacity %d", item.ID, playerID, item.PlayerCount))
				continue
			}
			owner[playerID] = item.ID
			kept = append(kept, playerID)
		}
		item.Players = kept
		out = append(out, item)
	}

	return out, repairs
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// uniqueTeamName appends the smallest numeric suffix that frees name, trimming
// the base so the result stays within maxLen runes.
func uniqueTeamName(name string, taken map[string]struct{}, maxLen int) string {
	base := []rune(strings.TrimSpace(name))
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" %d", n)
		keep := len(base)
		if maxLen > 0 && keep+len(suffix) > maxLen {
			keep = max(maxLen-len(suffix), 0)
		}
		candidate := string(base[:keep]) + suffix
		if _, used := taken[nameKey(candidate)]; !used {
			return candidate
		}
	}
}
