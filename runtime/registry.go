package runtime

import (
	"devhub/contract"
	"devhub/domain"
	"sync"
)

type set map[domain.ConnectionID]struct{}

// binding is everything the registry knows about one live connection.
type binding struct {
	code     domain.SessionCode
	identity domain.Identity
	sink     contract.EventSink
}

// Registry is the single source of truth for which connection is bound
// to which room, and under which identity. Every mutation is atomic
// with respect to the membership reads used for broadcast.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]binding
	roomMembers map[domain.SessionCode]set
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]binding),
		roomMembers: make(map[domain.SessionCode]set),
	}
}

// Bind records the room and identity for a connection. Rebinding to a
// new room implicitly removes the connection from its previous room, so
// a connection appears in at most one room at any instant.
func (r *Registry) Bind(id domain.ConnectionID, code domain.SessionCode, identity domain.Identity, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previous, ok := r.connections[id]; ok && previous.code != code {
		r.removeFromRoom(id, previous.code)
	}

	r.connections[id] = binding{code: code, identity: identity, sink: sink}

	if _, ok := r.roomMembers[code]; !ok {
		r.roomMembers[code] = make(set)
	}
	r.roomMembers[code][id] = struct{}{}
}

// Unbind removes all bindings for a connection. Safe to call on an
// unknown or already removed connection.
func (r *Registry) Unbind(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, ok := r.connections[id]
	if !ok {
		return
	}
	delete(r.connections, id)
	r.removeFromRoom(id, previous.code)
}

// removeFromRoom cleans up the membership set, dropping the room entry
// entirely once the last member leaves. Caller holds the write lock.
func (r *Registry) removeFromRoom(id domain.ConnectionID, code domain.SessionCode) {
	members, ok := r.roomMembers[code]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.roomMembers, code)
	}
}

// MembersOf returns a snapshot of the live membership, connection id to
// sink. Filtering the sender out is the caller's responsibility. An
// unknown or empty room yields nil.
func (r *Registry) MembersOf(code domain.SessionCode) map[domain.ConnectionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[code]
	if !ok {
		return nil
	}
	snapshot := make(map[domain.ConnectionID]contract.EventSink, len(members))
	for id := range members {
		if bound, exists := r.connections[id]; exists {
			snapshot[id] = bound.sink
		}
	}
	return snapshot
}

func (r *Registry) IdentityOf(id domain.ConnectionID) (domain.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bound, ok := r.connections[id]
	return bound.identity, ok
}

func (r *Registry) RoomOf(id domain.ConnectionID) (domain.SessionCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bound, ok := r.connections[id]
	return bound.code, ok
}
