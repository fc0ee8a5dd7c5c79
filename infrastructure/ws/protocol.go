package ws

import (
	"devhub/domain/event"
	"encoding/json"
	"fmt"
	"time"
)

// Wire events, matching the client protocol.
const (
	EventJoin         = "join_session"
	EventEditorChange = "editor_change"
	EventChatMessage  = "chat_message"
	EventSystem       = "system"
)

// Frame is the envelope every message travels in, both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	Code  string `json:"code" validate:"required,alphanum,max=16"`
	Token string `json:"token"`
}

// EditorChangePayload travels unchanged through the server: cursor and
// ts are opaque client data.
type EditorChangePayload struct {
	DocumentID int64           `json:"document_id"`
	Content    string          `json:"content"`
	Cursor     json.RawMessage `json:"cursor,omitempty"`
	Ts         json.RawMessage `json:"ts,omitempty"`
}

type ChatPayload struct {
	Content string `json:"content"`
}

type SystemPayload struct {
	Message string `json:"message"`
}

// ChatBroadcastPayload is the outbound chat shape: the author and
// timestamp are the canonical server-assigned values.
type ChatBroadcastPayload struct {
	User      string `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func newFrame(eventName string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: eventName, Data: data})
}

// encodeEvent converts an engine event into its wire representation.
func encodeEvent(e event.DomainEvent) ([]byte, error) {
	switch evt := e.(type) {
	case event.EditorChange:
		return newFrame(EventEditorChange, EditorChangePayload{
			DocumentID: evt.DocumentID,
			Content:    evt.Content,
			Cursor:     evt.Cursor,
			Ts:         evt.Ts,
		})
	case event.ChatMessage:
		return newFrame(EventChatMessage, ChatBroadcastPayload{
			User:      evt.Author,
			Content:   evt.Content,
			CreatedAt: evt.At.Format(time.RFC3339Nano),
		})
	case event.SystemNotice:
		return newFrame(EventSystem, SystemPayload{Message: evt.Message})
	default:
		return nil, fmt.Errorf("no wire encoding for event %T", e)
	}
}
