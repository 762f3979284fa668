package user

import (
	"testing"
	"time"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid", username: "coach", wantErr: false},
		{name: "empty", username: "   ", wantErr: true},
		{name: "too short", username: "ab", wantErr: true},
		{name: "min length", username: "abc", wantErr: false},
		{name: "max length", username: "abcdefghijklmnopqrst", wantErr: false},
		{name: "too long", username: "abcdefghijklmnopqrstu", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUsername(%q) err=%v wantErr=%v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: now.Add(time.Minute)}
	if s.Expired(now) {
		t.Fatalf("session should still be valid")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Fatalf("session should expire at ExpiresAt")
	}
}
