package ws

import (
	"errors"
	"testing"
)

func TestDecodeJoin(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		room string
	}{
		{"object data", `{"event":"join-room","data":{"roomId":"r1"}}`, "r1"},
		{"bare string data", `{"event":"join-room","data":"r1"}`, "r1"},
		{"mixed case event", `{"event":"Join-Room","data":{"roomId":"r1"}}`, "r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			j, ok := ev.(*JoinEvent)
			if !ok {
				t.Fatalf("decoded %T, want *JoinEvent", ev)
			}
			if j.RoomID != tt.room {
				t.Errorf("RoomID = %q, want %q", j.RoomID, tt.room)
			}
		})
	}
}

func TestDecodeControl(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind ControlKind
		time float64
	}{
		{"play", `{"event":"play","data":{"roomId":"r1","time":1.5}}`, ControlPlay, 1.5},
		{"pause", `{"event":"pause","data":{"roomId":"r1","time":20}}`, ControlPause, 20},
		{"seek", `{"event":"seek","data":{"roomId":"r1","time":42.5}}`, ControlSeek, 42.5},
		{"uppercase", `{"event":"SEEK","data":{"roomId":"r1","time":3}}`, ControlSeek, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			c, ok := ev.(*ControlEvent)
			if !ok {
				t.Fatalf("decoded %T, want *ControlEvent", ev)
			}
			if c.Kind != tt.kind || c.RoomID != "r1" || c.Time != tt.time {
				t.Errorf("decoded %+v, want kind=%v room=r1 time=%v", c, tt.kind, tt.time)
			}
		})
	}
}

func TestDecodeChat(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"event":"chat","data":{"roomId":"r1","message":"hi","user":"mia"}}`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	c, ok := ev.(*ChatEvent)
	if !ok {
		t.Fatalf("decoded %T, want *ChatEvent", ev)
	}
	if c.RoomID != "r1" || c.Message != "hi" || c.User != "mia" {
		t.Errorf("decoded %+v", c)
	}
}

func TestDecodeSignalKeepsPayloadOpaque(t *testing.T) {
	tests := []struct {
		name  string
		event string
		kind  SignalKind
	}{
		{"offer", "webrtc-offer", SignalOffer},
		{"answer", "webrtc-answer", SignalAnswer},
		{"ice", "webrtc-ice", SignalICE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"event":"` + tt.event + `","data":{"roomId":"r1","` + tt.kind.payloadField() + `":{"nested":{"deep":[1,2,3]}}}}`
			ev, err := DecodeEvent([]byte(raw))
			if err != nil {
				t.Fatalf("DecodeEvent: %v", err)
			}
			s, ok := ev.(*SignalEvent)
			if !ok {
				t.Fatalf("decoded %T, want *SignalEvent", ev)
			}
			if s.Kind != tt.kind || s.RoomID != "r1" {
				t.Errorf("decoded kind=%v room=%q", s.Kind, s.RoomID)
			}
			if string(s.Payload) != `{"nested":{"deep":[1,2,3]}}` {
				t.Errorf("payload = %s, not preserved verbatim", s.Payload)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown event", `{"event":"self-destruct","data":{}}`},
		{"missing event", `{"data":{"roomId":"r1"}}`},
		{"not json", `hello`},
		{"join without room", `{"event":"join-room","data":{}}`},
		{"control without room", `{"event":"play","data":{"time":1}}`},
		{"chat without room", `{"event":"chat","data":{"message":"hi"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeEvent([]byte(tt.raw)); err == nil {
				t.Fatal("DecodeEvent accepted malformed input")
			}
		})
	}
}

func TestDecodeUnknownEventError(t *testing.T) {
	_, err := DecodeEvent([]byte(`{"event":"nope","data":{}}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("err = %v, want ErrUnknownEvent", err)
	}
}
