package roster

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrInvalidName        = errors.New("invalid team name")
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrInvalidRegion      = errors.New("invalid region")
	ErrInvalidCountry     = errors.New("invalid country")
	ErrRosterOverCapacity = errors.New("roster exceeds player count")
	ErrDuplicatePlayer    = errors.New("duplicate player in roster")
	ErrInvalidPlayerID    = errors.New("invalid player id")
	ErrDuplicateName      = errors.New("team name already taken")
	ErrPlayerTaken        = errors.New("player belongs to another team")
)

// FieldError reports which team field broke which rule.
type FieldError struct {
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Rules stores team validation bounds.
type Rules struct {
	NameMinLength     int
	NameMaxLength     int
	MinPlayerCount    int
	MaxPlayerCount    int
	LocationMinLength int
	LocationMaxLength int
}

func DefaultRules() Rules {
	return Rules{
		NameMinLength:     3,
		NameMaxLength:     50,
		MinPlayerCount:    1,
		MaxPlayerCount:    15,
		LocationMinLength: 2,
		LocationMaxLength: 30,
	}
}

// NormalizeInput trims surrounding whitespace from the text fields.
func NormalizeInput(input TeamInput) TeamInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Region = strings.TrimSpace(input.Region)
	input.Country = strings.TrimSpace(input.Country)
	return input
}

// ValidateInput checks field bounds only; uniqueness needs the whole collection.
func ValidateInput(input TeamInput, rules Rules) error {
	if err := checkLength("name", input.Name, rules.NameMinLength, rules.NameMaxLength, ErrInvalidName); err != nil {
		return err
	}
	if input.PlayerCount < rules.MinPlayerCount || input.PlayerCount > rules.MaxPlayerCount {
		return &FieldError{
			Field:  "playerCount",
			Err:    ErrInvalidPlayerCount,
			Detail: fmt.Sprintf("must be between %d and %d, got %d", rules.MinPlayerCount, rules.MaxPlayerCount, input.PlayerCount),
		}
	}
	if err := checkLength("region", input.Region, rules.LocationMinLength, rules.LocationMaxLength, ErrInvalidRegion); err != nil {
		return err
	}
	if err := checkLength("country", input.Country, rules.LocationMinLength, rules.LocationMaxLength, ErrInvalidCountry); err != nil {
		return err
	}

	return nil
}

// ValidatePlayers checks that a roster holds distinct positive ids within capacity.
func ValidatePlayers(players []int64, playerCount int) error {
	seen := make(map[int64]struct{}, len(players))
	for _, playerID := range players {
		if playerID <= 0 {
			return &FieldError{Field: "players", Err: ErrInvalidPlayerID, Detail: fmt.Sprintf("%d", playerID)}
		}
		if _, ok := seen[playerID]; ok {
			return &FieldError{Field: "players", Err: ErrDuplicatePlayer, Detail: fmt.Sprintf("%d", playerID)}
		}
		seen[playerID] = struct{}{}
	}
	if len(players) > playerCount {
		return &FieldError{
			Field:  "players",
			Err:    ErrRosterOverCapacity,
			Detail: fmt.Sprintf("capacity=%d players=%d", playerCount, len(players)),
		}
	}

	return nil
}

// SameName compares team names the way uniqueness is enforced.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func checkLength(field, value string, minLen, maxLen int, target error) error {
	n := utf8.RuneCountInString(value)
	if n < minLen || n > maxLen {
		return &FieldError{
			Field:  field,
			Err:    target,
			Detail: fmt.Sprintf("must be %d-%d characters, got %d", minLen, maxLen, n),
		}
	}
	return nil
}
