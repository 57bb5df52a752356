package domain

import "context"

// Movie is the metadata record for an uploaded video file. FilePath is
// resolved fresh on every stream request; size and existence are never
// cached across requests.
type Movie struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	FilePath string `json:"filePath"`
	OwnerID  string `json:"owner,omitempty"`
}

type MovieRegistry interface {
	Resolve(ctx context.Context, id string) (*Movie, error)
}
