package ws

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/kinosync/kinosync/internal/domain"
	"github.com/kinosync/kinosync/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// RoomSource resolves room records for join and control authorization.
type RoomSource interface {
	GetByID(ctx context.Context, id string) (*domain.Room, error)
}

// PlaybackSink receives best-effort playback state write-backs.
type PlaybackSink interface {
	UpdatePlayback(ctx context.Context, id string, position float64, playing bool) error
}

const playbackWriteTimeout = 5 * time.Second

// Hub owns the live membership state: roomID -> clientID -> client. Room
// records stay in the registry; only ephemeral connections live here.
// Mutations go through the hub mutex, broadcasts run on snapshots so a
// slow receiver never holds the lock.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client

	source  RoomSource
	sink    PlaybackSink
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewHub wires the hub. sink and m may be nil; playback write-back and
// metric counting are then skipped.
func NewHub(source RoomSource, sink PlaybackSink, logger *zap.SugaredLogger, m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:   make(map[string]map[string]*Client),
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: m,
	}
}

// HandleEvent dispatches one inbound event. Events that fail authorization
// or reference unknown rooms are dropped without a reply: the sender must
// not be able to probe host or room state through error responses.
func (h *Hub) HandleEvent(ctx context.Context, c *Client, ev Event) {
	switch ev := ev.(type) {
	case *JoinEvent:
		h.handleJoin(ctx, c, ev)
	case *ControlEvent:
		h.handleControl(ctx, c, ev)
	case *ChatEvent:
		h.handleChat(c, ev)
	case *SignalEvent:
		h.handleSignal(c, ev)
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, ev *JoinEvent) {
	room, err := h.source.GetByID(ctx, ev.RoomID)
	if err != nil {
		h.logger.Warnw("join ignored", "roomId", ev.RoomID, "clientId", c.ID, "error", err)
		return
	}

	h.mu.Lock()
	members := h.rooms[ev.RoomID]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[ev.RoomID] = members
	}
	if _, already := members[c.ID]; already {
		h.mu.Unlock()
		return
	}
	members[c.ID] = c
	c.rooms[ev.RoomID] = struct{}{}
	count := len(members)
	others, all := snapshot(members, c.ID)

	joined := UserJoinedPayload{ID: c.ID}
	if c.Identity != nil {
		joined.UserID = c.Identity.UserID
		if c.Identity.UserID == room.HostID {
			joined.Name = room.HostName
		}
	}

	// Broadcasting under the lock keeps participants counts monotonic
	// across concurrent joins. deliver never blocks.
	h.deliver(others, NewUserJoined(ev.RoomID, joined))
	h.deliver(all, NewParticipants(ev.RoomID, count))
	h.mu.Unlock()

	h.logger.Infow("client joined room", "roomId", ev.RoomID, "clientId", c.ID, "participants", count)
}

func (h *Hub) handleControl(ctx context.Context, c *Client, ev *ControlEvent) {
	room, err := h.source.GetByID(ctx, ev.RoomID)
	if err != nil {
		return
	}

	if !mayControl(c.Identity, room) {
		return
	}

	h.relayToOthers(c, ev.RoomID, NewControl(ev.Kind, ev.RoomID, ev.Time))

	if h.sink != nil {
		playing := room.IsPlaying
		switch ev.Kind {
		case ControlPlay:
			playing = true
		case ControlPause:
			playing = false
		case ControlSeek:
			// position changes, play state carries over
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), playbackWriteTimeout)
			defer cancel()
			if err := h.sink.UpdatePlayback(ctx, room.ID, ev.Time, playing); err != nil {
				h.logger.Warnw("playback write-back failed", "roomId", room.ID, "error", err)
			}
		}()
	}
}

func (h *Hub) handleChat(c *Client, ev *ChatEvent) {
	msg := strings.TrimSpace(ev.Message)
	if msg == "" {
		return
	}
	if runes := []rune(msg); len(runes) > MaxChatLength {
		msg = string(runes[:MaxChatLength])
	}

	h.relayToOthers(c, ev.RoomID, NewChat(ev.RoomID, msg, ev.User))
}

func (h *Hub) handleSignal(c *Client, ev *SignalEvent) {
	h.relayToOthers(c, ev.RoomID, &WSMessage{
		Event:  ev.Kind.EventName(),
		RoomID: ev.RoomID,
		Data:   map[string]json.RawMessage{ev.Kind.payloadField(): ev.Payload},
	})
}

// Drop removes the connection from every room it joined and notifies the
// remaining members. Called exactly once from the read pump on disconnect.
func (h *Hub) Drop(c *Client) {
	var userID string
	if c.Identity != nil {
		userID = c.Identity.UserID
	}

	h.mu.Lock()
	for roomID := range c.rooms {
		members := h.rooms[roomID]
		if members == nil {
			continue
		}
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
			continue
		}
		_, remaining := snapshot(members, c.ID)
		h.deliver(remaining, NewParticipants(roomID, len(members)))
		h.deliver(remaining, NewUserLeft(roomID, c.ID, userID))
	}
	c.rooms = make(map[string]struct{})
	h.mu.Unlock()
}

// MemberCount reports the live membership of a room.
func (h *Hub) MemberCount(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) relayToOthers(sender *Client, roomID string, msg *WSMessage) {
	h.mu.RLock()
	members := h.rooms[roomID]
	others, _ := snapshot(members, sender.ID)
	h.mu.RUnlock()

	h.deliver(others, msg)
}

// deliver fans a message out without blocking: a receiver with a full
// buffer loses the message rather than stalling the room.
func (h *Hub) deliver(clients []*Client, msg *WSMessage) {
	for _, cl := range clients {
		if cl.IsClosed() {
			continue
		}

		select {
		case cl.send <- msg:
			if h.metrics != nil {
				h.metrics.EventsRelayed.WithLabelValues(msg.Event).Inc()
			}
		default:
			h.logger.Warnw("client buffer full, dropping message", "clientId", cl.ID, "event", msg.Event)
			if h.metrics != nil {
				h.metrics.DroppedMessages.Inc()
			}
		}
	}
}

func mayControl(identity *domain.Identity, room *domain.Room) bool {
	if identity == nil {
		return false
	}
	return identity.IsAdmin || identity.UserID == room.HostID
}

// snapshot copies the member set under the caller's lock so delivery can
// happen outside it. Returns members excluding the given id, then all.
func snapshot(members map[string]*Client, exclude string) (others, all []*Client) {
	all = make([]*Client, 0, len(members))
	others = make([]*Client, 0, len(members))
	for id, cl := range members {
		all = append(all, cl)
		if id != exclude {
			others = append(others, cl)
		}
	}
	return others, all
}
