package runtime

import (
	"context"
	"devhub/domain"
	"devhub/domain/event"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordSink accumulates delivered events in order.
type recordSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordSink) Consume(ctx context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

// stuckSink blocks every delivery until the caller's context expires.
type stuckSink struct{}

func (s stuckSink) Consume(ctx context.Context, e event.DomainEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

// staticResolver avoids real JWTs in engine tests.
type staticResolver struct {
	identities map[string]domain.Identity
}

func (r staticResolver) Resolve(token string) domain.Identity {
	identity, ok := r.identities[token]
	if !ok {
		return domain.Anonymous
	}
	return identity
}

func newTestBroadcaster(archive chan event.DomainEvent) *Broadcaster {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	resolver := staticResolver{identities: map[string]domain.Identity{
		"alice-token": {Email: "alice@x.com"},
	}}
	return NewBroadcaster(log, resolver, NewRegistry(), archive, 50*time.Millisecond)
}

func TestBroadcaster_Join_Acks_Sender_Only(t *testing.T) {
	req := require.New(t)
	archive := make(chan event.DomainEvent, 10)
	engine := newTestBroadcaster(archive)
	sinkA, sinkB := &recordSink{}, &recordSink{}

	// Given a member already in the room
	engine.Join("conn-b", "ABCD1234", "", sinkB)

	// When another connection joins
	engine.Join("conn-a", "ABCD1234", "alice-token", sinkA)

	// Then only the joining connection receives the system ack
	req.Len(sinkA.Events(), 1)
	notice, ok := sinkA.Events()[0].(event.SystemNotice)
	req.True(ok)
	req.Equal("joined ABCD1234", notice.Message)
	req.Len(sinkB.Events(), 1) // only its own join ack
}

func TestBroadcaster_EditorChange_Excludes_Sender(t *testing.T) {
	req := require.New(t)
	engine := newTestBroadcaster(make(chan event.DomainEvent, 10))
	sinkA, sinkB, sinkC := &recordSink{}, &recordSink{}, &recordSink{}

	engine.Join("conn-a", "ABCD1234", "alice-token", sinkA)
	engine.Join("conn-b", "ABCD1234", "", sinkB)
	engine.Join("conn-c", "OTHER123", "", sinkC)

	// When A sends an editor change
	change := event.EditorChange{DocumentID: 1, Content: "x", Cursor: []byte(`{"line":2}`)}
	engine.EditorChange("conn-a", change)

	// Then B receives it unchanged, A does not receive its own event,
	// and the other room is untouched
	eventsB := sinkB.Events()
	req.Len(eventsB, 2) // join ack + editor change
	received, ok := eventsB[1].(event.EditorChange)
	req.True(ok)
	req.Equal(int64(1), received.DocumentID)
	req.Equal("x", received.Content)
	req.JSONEq(`{"line":2}`, string(received.Cursor))
	req.Equal(domain.SessionCode("ABCD1234"), received.Code)

	req.Len(sinkA.Events(), 1)
	req.Len(sinkC.Events(), 1)
}

func TestBroadcaster_Chat_Includes_Sender_And_Archives(t *testing.T) {
	req := require.New(t)
	archive := make(chan event.DomainEvent, 10)
	engine := newTestBroadcaster(archive)
	sinkA, sinkB := &recordSink{}, &recordSink{}

	engine.Join("conn-a", "ABCD1234", "alice-token", sinkA)
	engine.Join("conn-b", "ABCD1234", "", sinkB)

	// When the authenticated member sends a chat message
	engine.PostChat("conn-a", "hello")

	// Then both members receive the canonical event, sender included
	for _, sink := range []*recordSink{sinkA, sinkB} {
		events := sink.Events()
		req.Len(events, 2)
		chat, ok := events[1].(event.ChatMessage)
		req.True(ok)
		req.Equal("alice@x.com", chat.Author)
		req.Equal("hello", chat.Content)
		req.False(chat.At.IsZero())
	}

	// And the same event reaches the archive path
	select {
	case archived := <-archive:
		req.Equal(sinkA.Events()[1], archived)
	default:
		req.Fail("chat event was not handed to the archive channel")
	}

	// When the anonymous member answers
	engine.PostChat("conn-b", "hi")

	// Then the author is the anonymous label
	chat, ok := sinkA.Events()[2].(event.ChatMessage)
	req.True(ok)
	req.Equal(domain.AnonLabel, chat.Author)
}

func TestBroadcaster_Unbound_Connection_Events_Are_Dropped(t *testing.T) {
	req := require.New(t)
	archive := make(chan event.DomainEvent, 10)
	engine := newTestBroadcaster(archive)
	sinkA := &recordSink{}

	engine.Join("conn-a", "ABCD1234", "", sinkA)

	// When a connection that never joined emits events
	engine.EditorChange("ghost", event.EditorChange{Content: "x"})
	engine.PostChat("ghost", "hello")

	// Then nothing is delivered, nothing is archived, nothing crashes
	req.Len(sinkA.Events(), 1)
	req.Empty(archive)
}

func TestBroadcaster_No_Delivery_After_Leave(t *testing.T) {
	req := require.New(t)
	engine := newTestBroadcaster(make(chan event.DomainEvent, 10))
	sinkA, sinkB := &recordSink{}, &recordSink{}

	engine.Join("conn-a", "ABCD1234", "", sinkA)
	engine.Join("conn-b", "ABCD1234", "", sinkB)

	// When B leaves and A keeps emitting
	engine.Leave("conn-b")
	engine.EditorChange("conn-a", event.EditorChange{Content: "after-leave"})
	engine.PostChat("conn-a", "still there?")

	// Then B receives nothing beyond its original join ack
	req.Len(sinkB.Events(), 1)
}

func TestBroadcaster_Per_Sender_Order_Is_Preserved(t *testing.T) {
	req := require.New(t)
	engine := newTestBroadcaster(make(chan event.DomainEvent, 10))
	sinkA, sinkB := &recordSink{}, &recordSink{}

	engine.Join("conn-a", "ABCD1234", "", sinkA)
	engine.Join("conn-b", "ABCD1234", "", sinkB)

	// When the same sender emits a sequence of edits
	for i := 0; i < 20; i++ {
		engine.EditorChange("conn-a", event.EditorChange{DocumentID: int64(i)})
	}

	// Then the recipient observes them in send order
	events := sinkB.Events()[1:] // skip join ack
	req.Len(events, 20)
	for i, e := range events {
		change, ok := e.(event.EditorChange)
		req.True(ok)
		req.Equal(int64(i), change.DocumentID)
	}
}

func TestBroadcaster_Slow_Recipient_Does_Not_Abort_Fanout(t *testing.T) {
	req := require.New(t)
	engine := newTestBroadcaster(make(chan event.DomainEvent, 10))
	sinkA, sinkB := &recordSink{}, &recordSink{}

	engine.Join("conn-a", "ABCD1234", "", sinkA)
	engine.Join("stuck", "ABCD1234", "", stuckSink{})
	engine.Join("conn-b", "ABCD1234", "", sinkB)

	// When A broadcasts while one member cannot keep up
	start := time.Now()
	engine.EditorChange("conn-a", event.EditorChange{Content: "x"})

	// Then the stuck member is dropped after the delivery timeout and
	// the healthy member is still served
	req.Less(time.Since(start), time.Second)
	req.Len(sinkB.Events(), 2)
}

func TestBroadcaster_Full_Archive_Channel_Does_Not_Block_Broadcast(t *testing.T) {
	req := require.New(t)
	// Unbuffered channel with no consumer: every handoff would block
	archive := make(chan event.DomainEvent)
	engine := newTestBroadcaster(archive)
	sinkA := &recordSink{}

	engine.Join("conn-a", "ABCD1234", "alice-token", sinkA)

	// When chat is posted with the archive path saturated
	engine.PostChat("conn-a", "hello")

	// Then the broadcast still completes
	req.Len(sinkA.Events(), 2)
}
