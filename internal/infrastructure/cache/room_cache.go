package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RoomSource is the read-side of the room registry consumed by the hub.
type RoomSource interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// CachedRoomSource is a read-through Redis cache in front of the durable
// registry. The hub looks the host up on every control event; a short TTL
// keeps that path off Mongo without making host transfer or playback
// staleness matter (entries expire, they are never invalidated).
type CachedRoomSource struct {
	inner  RoomSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewCachedRoomSource(inner RoomSource, client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *CachedRoomSource {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedRoomSource{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedRoomSource) key(id string) string {
	return fmt.Sprintf("room:%s", id)
}

func (c *CachedRoomSource) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == nil {
		var room domain.Room
		if err := json.Unmarshal([]byte(data), &room); err == nil {
			return &room, nil
		}
		// corrupt entry, fall through to the registry
	} else if err != redis.Nil {
		c.logger.Warnw("room cache read failed", "roomId", id, "error", err)
	}

	room, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(room); err == nil {
		if err := c.client.Set(ctx, c.key(id), encoded, c.ttl).Err(); err != nil {
			c.logger.Warnw("room cache write failed", "roomId", id, "error", err)
		}
	}

	return room, nil
}
