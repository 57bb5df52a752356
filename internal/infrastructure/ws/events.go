package ws

// Canonical wire event names. Inbound names are matched case-insensitively
// at the decode boundary (older clients emitted "Join-room"); the server
// only ever speaks the canonical spelling.
const (
	EventJoinRoom = "join-room"

	EventPlay  = "play"
	EventPause = "pause"
	EventSeek  = "seek"

	EventChat = "chat"

	EventWebRTCOffer  = "webrtc-offer"
	EventWebRTCAnswer = "webrtc-answer"
	EventWebRTCICE    = "webrtc-ice"

	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventParticipants = "participants"
)

// MaxChatLength is the relay cap for chat messages, in runes.
const MaxChatLength = 1000
