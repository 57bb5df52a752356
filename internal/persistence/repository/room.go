package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type roomDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Host         primitive.ObjectID `bson:"host"`
	HostName     string             `bson:"hostName,omitempty"`
	Movie        primitive.ObjectID `bson:"movie"`
	PlaybackTime float64            `bson:"playbackTime"`
	IsPlaying    bool               `bson:"isPlaying"`
	InviteToken  string             `bson:"inviteToken,omitempty"`
	RoomCode     string             `bson:"roomCode,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *roomDoc) toDomain() *domain.Room {
	return &domain.Room{
		ID:           d.ID.Hex(),
		HostID:       d.Host.Hex(),
		HostName:     d.HostName,
		MovieID:      d.Movie.Hex(),
		PlaybackTime: d.PlaybackTime,
		IsPlaying:    d.IsPlaying,
		InviteToken:  d.InviteToken,
		RoomCode:     d.RoomCode,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type roomRegistry struct {
	collection *mongo.Collection
}

func NewRoomRegistry(database *mongo.Database) domain.RoomRegistry {
	return &roomRegistry{collection: database.Collection(db.RoomsCollection)}
}

// EnsureRoomIndexes creates the unique sparse indexes backing the
// one-room-per-token and one-room-per-code invariants.
func EnsureRoomIndexes(ctx context.Context, database *mongo.Database) error {
	collection := database.Collection(db.RoomsCollection)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "inviteToken", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "roomCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}
	return nil
}

func (r *roomRegistry) Create(ctx context.Context, hostID, hostName, movieID string) (*domain.Room, error) {
	host, err := primitive.ObjectIDFromHex(hostID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	movie, err := primitive.ObjectIDFromHex(movieID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	token, err := NewInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}
	code, err := NewRoomCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate room code: %w", err)
	}

	now := time.Now().UTC()
	doc := roomDoc{
		Host:        host,
		HostName:    hostName,
		Movie:       movie,
		InviteToken: token,
		RoomCode:    code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to insert room: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *roomRegistry) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *roomRegistry) GetByToken(ctx context.Context, token string) (*domain.Room, error) {
	if token == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.findOne(ctx, bson.M{"inviteToken": token})
}

func (r *roomRegistry) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	if code == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.findOne(ctx, bson.M{"roomCode": code})
}

func (r *roomRegistry) findOne(ctx context.Context, filter bson.M) (*domain.Room, error) {
	var doc roomDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdatePlayback is last-write-wins on purpose: the persisted position is
// advisory catch-up state, not authoritative synchronization.
func (r *roomRegistry) UpdatePlayback(ctx context.Context, id string, position float64, playing bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"playbackTime": position,
		"isPlaying":    playing,
		"updatedAt":    time.Now().UTC(),
	}}

	res, err := r.collection.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("failed to update playback state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
