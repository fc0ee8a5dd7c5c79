// Package runtime handles event routing and propagation between live
// connections. It orchestrates fan-out without containing business
// logic or transport details.
package runtime

import (
	"context"
	"devhub/contract"
	"devhub/domain"
	"devhub/domain/event"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Broadcaster routes an inbound event from one connection to the other
// members of its room.
//
// Ordering: events from one connection are routed from that
// connection's single reader goroutine, and every delivery goes through
// the recipient's ordered buffer. Two events sent by the same
// connection therefore reach any fixed recipient in send order,
// regardless of interleaving with other connections' traffic.
//
// Persistence is decoupled: chat events are handed to the archive
// channel and the broadcast returns without waiting on storage.
type Broadcaster struct {
	log             *slog.Logger
	resolver        contract.IResolver
	registry        contract.IRegistry
	archive         chan<- event.DomainEvent
	deliveryTimeout time.Duration
}

func NewBroadcaster(log *slog.Logger, resolver contract.IResolver, registry contract.IRegistry,
	archive chan<- event.DomainEvent, deliveryTimeout time.Duration) *Broadcaster {
	return &Broadcaster{
		log:             log,
		resolver:        resolver,
		registry:        registry,
		archive:         archive,
		deliveryTimeout: deliveryTimeout,
	}
}

// Join resolves the token, binds the connection to the room, and sends
// a system acknowledgment to the joining connection only. This must be
// the first operation a connection performs: until then every other
// event is discarded.
func (b *Broadcaster) Join(id domain.ConnectionID, code domain.SessionCode, token string, sink contract.EventSink) {
	identity := b.resolver.Resolve(token)
	b.registry.Bind(id, code, identity, sink)
	b.log.Debug("connection bound", "connection_id", id, "code", code, "user", identity.Label())

	b.deliver(sink, event.SystemNotice{Code: code, Message: fmt.Sprintf("joined %s", code)})
}

// EditorChange delivers the payload unchanged to every member of the
// sender's room except the sender. An event from an unbound connection
// is discarded silently: a late event racing the join is expected and
// harmless.
func (b *Broadcaster) EditorChange(id domain.ConnectionID, change event.EditorChange) {
	code, ok := b.registry.RoomOf(id)
	if !ok {
		b.log.Debug("editor change from unbound connection dropped", "connection_id", id)
		return
	}
	change.Code = code

	for memberID, sink := range b.registry.MembersOf(code) {
		if memberID == id {
			continue
		}
		b.deliver(sink, change)
	}
}

// PostChat builds the canonical chat event, delivers it to every member
// of the room including the sender, then hands it to the archive path.
// The sender receives the server-assigned timestamp and author rather
// than trusting its local echo.
func (b *Broadcaster) PostChat(id domain.ConnectionID, content string) {
	code, ok := b.registry.RoomOf(id)
	if !ok {
		b.log.Debug("chat from unbound connection dropped", "connection_id", id)
		return
	}
	identity, _ := b.registry.IdentityOf(id)

	evt := event.ChatMessage{
		ID:      uuid.New(),
		Code:    code,
		Author:  identity.Label(),
		Content: content,
		At:      time.Now().UTC(),
	}

	for _, sink := range b.registry.MembersOf(code) {
		b.deliver(sink, evt)
	}

	// Best-effort handoff: a full archive channel loses the write,
	// never the broadcast.
	select {
	case b.archive <- evt:
	default:
		b.log.Warn("archive channel full, dropping chat write", "code", code)
	}
}

// Leave removes the connection's bindings. Called exactly once per
// disconnect by the transport.
func (b *Broadcaster) Leave(id domain.ConnectionID) {
	b.registry.Unbind(id)
}

// deliver pushes one event to one recipient, blocking at most
// deliveryTimeout. A recipient that cannot keep up loses this event;
// the rest of the fan-out is unaffected.
func (b *Broadcaster) deliver(sink contract.EventSink, evt event.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), b.deliveryTimeout)
	defer cancel()

	if err := sink.Consume(ctx, evt); err != nil {
		b.log.Debug("delivery dropped", "code", evt.SessionCode(), "error", err)
	}
}
