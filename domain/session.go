package domain

import "math/rand/v2"

// SessionCode is the short join code shared between participants.
// Rooms are keyed by it: a room exists exactly as long as at least one
// connection is bound to its code.
type SessionCode string

// ConnectionID identifies one live connection. Opaque, unique per
// connection, assigned by the transport on connect.
type ConnectionID string

const (
	sessionCodeLength   = 8
	sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewSessionCode generates a join code like "ABCD1234".
// Uniqueness is enforced by the session store, not here.
func NewSessionCode() SessionCode {
	code := make([]byte, sessionCodeLength)
	for i := range code {
		code[i] = sessionCodeAlphabet[rand.IntN(len(sessionCodeAlphabet))]
	}
	return SessionCode(code)
}
