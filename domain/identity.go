// Package domain contains core concepts of the collaboration system.
// This file defines the Identity attached to a connection after join.
// No runtime, network, or UI logic should be added here.
package domain

// AnonLabel is the display name used for unauthenticated participants.
const AnonLabel = "anon"

// Identity is the resolved user reference bound to a connection.
// The zero value is the anonymous sentinel: a participant that joined
// without a token, or whose token failed verification.
type Identity struct {
	Email string
}

// Anonymous is the sentinel identity, distinct from any real user.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.Email == ""
}

// Label returns the display name broadcast with chat messages.
func (i Identity) Label() string {
	if i.IsAnonymous() {
		return AnonLabel
	}
	return i.Email
}
