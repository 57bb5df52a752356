package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type movieDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Title    string             `bson:"title"`
	FilePath string             `bson:"filePath"`
	Owner    primitive.ObjectID `bson:"owner,omitempty"`
}

type movieRegistry struct {
	collection *mongo.Collection
}

func NewMovieRegistry(database *mongo.Database) domain.MovieRegistry {
	return &movieRegistry{collection: database.Collection(db.MoviesCollection)}
}

// Resolve looks the record up fresh on every call; file path and size are
// never cached across requests.
func (r *movieRegistry) Resolve(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var doc movieDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to load movie: %w", err)
	}

	return &domain.Movie{
		ID:       doc.ID.Hex(),
		Title:    doc.Title,
		FilePath: doc.FilePath,
		OwnerID:  doc.Owner.Hex(),
	}, nil
}
