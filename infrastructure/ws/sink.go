package ws

import (
	"context"
	"devhub/domain/event"
)

// ConnSink is the per-connection delivery buffer. The broadcast engine
// pushes into it from the sender's goroutine; the connection's write
// pump drains it in order, which is what gives FIFO delivery per
// sender to this recipient.
type ConnSink struct {
	Events chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume is called by the fan-out. It blocks only while the buffer is
// full, at most until the caller's delivery timeout; the caller drops
// the event for this recipient on ctx expiry.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
