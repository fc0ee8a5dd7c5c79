// Package event defines the transient values flowing through the
// broadcast engine. Events are immutable once built and are not
// retained after fan-out.
package event

import (
	"devhub/domain"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	SessionCode() domain.SessionCode
}

// EditorChange is a document edit relayed to every other member of the
// room. The payload travels unchanged: cursor and ts are opaque to the
// server and only meaningful to clients.
type EditorChange struct {
	Code       domain.SessionCode
	DocumentID int64
	Content    string
	Cursor     json.RawMessage
	Ts         json.RawMessage
}

func (e EditorChange) SessionCode() domain.SessionCode {
	return e.Code
}

// ChatMessage carries the canonical server-assigned author and
// timestamp. It is delivered to every member of the room, sender
// included, then handed to the archive path.
type ChatMessage struct {
	ID      uuid.UUID
	Code    domain.SessionCode
	Author  string
	Content string
	At      time.Time
}

func (m ChatMessage) SessionCode() domain.SessionCode {
	return m.Code
}

// SystemNotice is addressed to a single connection, never broadcast.
type SystemNotice struct {
	Code    domain.SessionCode
	Message string
}

func (s SystemNotice) SessionCode() domain.SessionCode {
	return s.Code
}
