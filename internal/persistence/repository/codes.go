package repository

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// Alphabet excludes ambiguous characters: 0, O, 1, I, L
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const (
	codePrefix      = "ROOM-"
	codeSuffixLen   = 4
	inviteTokenSize = 12 // bytes of entropy, hex-encoded
)

// NewInviteToken returns a high-entropy opaque token. Collisions are
// negligible at this size.
func NewInviteToken() (string, error) {
	buf := make([]byte, inviteTokenSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NewRoomCode returns a short human-typable code like ROOM-K7PQ. Collisions
// are possible at scale; uniqueness is enforced only by the store's unique
// index, not deduplicated here.
func NewRoomCode() (string, error) {
	suffix := make([]byte, codeSuffixLen)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return codePrefix + string(suffix), nil
}
