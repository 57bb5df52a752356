package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownEvent = errors.New("unknown event")

// Event is the closed set of inbound client events. Decoding happens once,
// at the wire boundary; everything past DecodeEvent dispatches on concrete
// types instead of raw event-name strings.
type Event interface {
	event()
}

type JoinEvent struct {
	RoomID string
}

type ControlKind int

const (
	ControlPlay ControlKind = iota
	ControlPause
	ControlSeek
)

func (k ControlKind) EventName() string {
	switch k {
	case ControlPlay:
		return EventPlay
	case ControlPause:
		return EventPause
	default:
		return EventSeek
	}
}

type ControlEvent struct {
	Kind   ControlKind
	RoomID string
	Time   float64
}

type ChatEvent struct {
	RoomID  string
	Message string
	User    string
}

type SignalKind int

const (
	SignalOffer SignalKind = iota
	SignalAnswer
	SignalICE
)

func (k SignalKind) EventName() string {
	switch k {
	case SignalOffer:
		return EventWebRTCOffer
	case SignalAnswer:
		return EventWebRTCAnswer
	default:
		return EventWebRTCICE
	}
}

// payloadField is the key the opaque payload travels under, both inbound
// and on relay.
func (k SignalKind) payloadField() string {
	switch k {
	case SignalOffer:
		return "offer"
	case SignalAnswer:
		return "answer"
	default:
		return "candidate"
	}
}

type SignalEvent struct {
	Kind    SignalKind
	RoomID  string
	Payload json.RawMessage
}

func (*JoinEvent) event()    {}
func (*ControlEvent) event() {}
func (*ChatEvent) event()    {}
func (*SignalEvent) event()  {}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeEvent parses a raw inbound frame into one of the Event variants.
// Event names are normalized case-insensitively here and nowhere else.
func DecodeEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch strings.ToLower(env.Event) {
	case EventJoinRoom:
		return decodeJoin(env.Data)
	case EventPlay:
		return decodeControl(ControlPlay, env.Data)
	case EventPause:
		return decodeControl(ControlPause, env.Data)
	case EventSeek:
		return decodeControl(ControlSeek, env.Data)
	case EventChat:
		return decodeChat(env.Data)
	case EventWebRTCOffer:
		return decodeSignal(SignalOffer, env.Data)
	case EventWebRTCAnswer:
		return decodeSignal(SignalAnswer, env.Data)
	case EventWebRTCICE:
		return decodeSignal(SignalICE, env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// decodeJoin accepts either a bare room id string or {"roomId": "..."}.
func decodeJoin(data json.RawMessage) (Event, error) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err == nil && roomID != "" {
		return &JoinEvent{RoomID: roomID}, nil
	}

	var payload struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return nil, fmt.Errorf("join-room: missing room id")
	}
	return &JoinEvent{RoomID: payload.RoomID}, nil
}

func decodeControl(kind ControlKind, data json.RawMessage) (Event, error) {
	var payload struct {
		RoomID string  `json:"roomId"`
		Time   float64 `json:"time"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%s: %w", kind.EventName(), err)
	}
	if payload.RoomID == "" {
		return nil, fmt.Errorf("%s: missing room id", kind.EventName())
	}
	return &ControlEvent{Kind: kind, RoomID: payload.RoomID, Time: payload.Time}, nil
}

func decodeChat(data json.RawMessage) (Event, error) {
	var payload struct {
		RoomID  string `json:"roomId"`
		Message string `json:"message"`
		User    string `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}
	if payload.RoomID == "" {
		return nil, fmt.Errorf("chat: missing room id")
	}
	return &ChatEvent{RoomID: payload.RoomID, Message: payload.Message, User: payload.User}, nil
}

// decodeSignal extracts the room id and keeps the negotiation payload
// opaque: its structure belongs to the peers, not the server.
func decodeSignal(kind SignalKind, data json.RawMessage) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%s: %w", kind.EventName(), err)
	}

	var roomID string
	if raw, ok := fields["roomId"]; ok {
		_ = json.Unmarshal(raw, &roomID)
	}
	if roomID == "" {
		return nil, fmt.Errorf("%s: missing room id", kind.EventName())
	}

	return &SignalEvent{Kind: kind, RoomID: roomID, Payload: fields[kind.payloadField()]}, nil
}
