//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"devhub/domain"
	"devhub/domain/event"
	"reflect"
)

// EventSink receives events addressed to one consumer. Implementations
// must not block past ctx: a delivery that cannot complete is dropped
// by the caller, not retried.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the single source of truth for connection bindings.
// No other component may cache the connection -> room mapping.
type IRegistry interface {
	Bind(id domain.ConnectionID, code domain.SessionCode, identity domain.Identity, sink EventSink)
	Unbind(id domain.ConnectionID)
	MembersOf(code domain.SessionCode) map[domain.ConnectionID]EventSink
	IdentityOf(id domain.ConnectionID) (domain.Identity, bool)
	RoomOf(id domain.ConnectionID) (domain.SessionCode, bool)
}

// IResolver turns an opaque bearer token into an identity.
// It never fails: anything unverifiable resolves to domain.Anonymous.
type IResolver interface {
	Resolve(token string) domain.Identity
}

// Worker doesn't protect itself: panics and restarts are the
// supervisor's concern.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used for logging during supervision without forcing a naming method
// onto the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
