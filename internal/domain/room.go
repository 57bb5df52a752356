package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrMovieNotFound = errors.New("movie not found")
	ErrInvalidID     = errors.New("invalid identifier")
	ErrInvalidInput  = errors.New("invalid input")
)

// Room is the durable record for a watch party. Membership is not part of
// it: live connections are tracked in-process by the hub only.
type Room struct {
	ID           string    `json:"id"`
	HostID       string    `json:"host"`
	HostName     string    `json:"hostName,omitempty"`
	MovieID      string    `json:"movie"`
	PlaybackTime float64   `json:"playbackTime"`
	IsPlaying    bool      `json:"isPlaying"`
	InviteToken  string    `json:"inviteToken,omitempty"`
	RoomCode     string    `json:"roomCode,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RoomRegistry interface {
	Create(ctx context.Context, hostID, hostName, movieID string) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	GetByToken(ctx context.Context, token string) (*Room, error)
	GetByCode(ctx context.Context, code string) (*Room, error)

	// UpdatePlayback persists the last known playback position and state.
	// Last write wins; the data is advisory, not authoritative.
	UpdatePlayback(ctx context.Context, id string, position float64, playing bool) error
}
