package workers

import (
	"context"
	"devhub/contract"
	"devhub/domain/event"
	"log/slog"
)

// ArchiveWorker drains chat events handed off by the broadcast engine
// into the durable sink. It runs outside the broadcast path: a stalled
// or failing write delays or loses only the write, never delivery.
//
// Writes are best-effort. An error abandons the single event -- no
// retry, no queueing -- and the worker keeps draining.
type ArchiveWorker struct {
	events <-chan event.DomainEvent
	sink   contract.EventSink
	log    *slog.Logger
}

func NewArchiveWorker(events <-chan event.DomainEvent, sink contract.EventSink, log *slog.Logger) *ArchiveWorker {
	return &ArchiveWorker{events: events, sink: sink, log: log}
}

func (w *ArchiveWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping archive worker")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			if err := w.sink.Consume(ctx, evt); err != nil {
				w.log.Warn("chat write abandoned", "code", evt.SessionCode(), "error", err)
			}
		}
	}
}
