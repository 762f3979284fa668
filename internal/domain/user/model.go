package user

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 20
)

// Session is the opaque "current user" gating access to the roster.
type Session struct {
	Token     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	n := utf8.RuneCountInString(username)
	if n < UsernameMinLength {
		return fmt.Errorf("username must be at least %d characters long", UsernameMinLength)
	}
	if n > UsernameMaxLength {
		return fmt.Errorf("username cannot be longer than %d characters", UsernameMaxLength)
	}
	return nil
}
