package repository

import (
	"regexp"
	"strings"
	"testing"
)

func TestNewRoomCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ROOM-[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{4}$`)

	for i := 0; i < 100; i++ {
		code, err := NewRoomCode()
		if err != nil {
			t.Fatalf("NewRoomCode() error: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Errorf("NewRoomCode() = %q, doesn't match expected pattern", code)
		}
	}
}

func TestNewRoomCodeNoAmbiguousChars(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewRoomCode()
		if err != nil {
			t.Fatal(err)
		}
		suffix := strings.TrimPrefix(code, "ROOM-")
		if strings.ContainsAny(suffix, "0OIL1") {
			t.Errorf("code %q contains ambiguous character", code)
		}
	}
}

func TestNewInviteToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewInviteToken()
		if err != nil {
			t.Fatalf("NewInviteToken() error: %v", err)
		}
		if len(token) != inviteTokenSize*2 {
			t.Fatalf("token length = %d, want %d", len(token), inviteTokenSize*2)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q after %d draws", token, i)
		}
		seen[token] = true
	}
}
