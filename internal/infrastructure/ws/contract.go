package ws

// WSMessage is the outbound envelope written to clients.
type WSMessage struct {
	Event  string `json:"event"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data"`
}

type UserJoinedPayload struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name,omitempty"`
}

type UserLeftPayload struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
}

type ParticipantsPayload struct {
	Count int `json:"count"`
}

type ChatPayload struct {
	Message string `json:"message"`
	User    string `json:"user,omitempty"`
}

func NewUserJoined(roomID string, payload UserJoinedPayload) *WSMessage {
	return &WSMessage{
		Event:  EventUserJoined,
		RoomID: roomID,
		Data:   payload,
	}
}

func NewUserLeft(roomID, id, userID string) *WSMessage {
	return &WSMessage{
		Event:  EventUserLeft,
		RoomID: roomID,
		Data:   UserLeftPayload{ID: id, UserID: userID},
	}
}

func NewParticipants(roomID string, count int) *WSMessage {
	return &WSMessage{
		Event:  EventParticipants,
		RoomID: roomID,
		Data:   ParticipantsPayload{Count: count},
	}
}

func NewChat(roomID, message, user string) *WSMessage {
	return &WSMessage{
		Event:  EventChat,
		RoomID: roomID,
		Data:   ChatPayload{Message: message, User: user},
	}
}

func NewControl(kind ControlKind, roomID string, time float64) *WSMessage {
	return &WSMessage{
		Event:  kind.EventName(),
		RoomID: roomID,
		Data:   time,
	}
}
