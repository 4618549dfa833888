package chat

import "sync"

// Registry maps room names to rooms for the whole server. Lookup and
// insertion are a single atomic find-or-create, so two connections racing on
// the same name always share one room. Rooms are never evicted.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// FindOrCreateRoom returns the room with the given name, creating it on
// first reference.
func (g *Registry) FindOrCreateRoom(name string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[name]; ok {
		return room
	}
	room := NewRoom(name)
	g.rooms[name] = room
	return room
}

// RoomCount reports the number of rooms created so far.
func (g *Registry) RoomCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
