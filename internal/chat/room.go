package chat

import (
	"sync"

	"github.com/google/uuid"
)

// Room is a named broadcast group. Membership changes and broadcasts on the
// same room are mutually exclusive; distinct rooms operate fully
// concurrently. A room never owns its members.
type Room struct {
	name string

	mu      sync.Mutex
	members map[uuid.UUID]*User
}

// NewRoom constructs an empty room with the given name.
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		members: make(map[uuid.UUID]*User),
	}
}

// Name returns the room name.
func (r *Room) Name() string {
	return r.name
}

// AddMember registers a user. The caller is responsible for removing the
// user before releasing it.
func (r *Room) AddMember(u *User) {
	r.mu.Lock()
	r.members[u.ID] = u
	r.mu.Unlock()
}

// RemoveMember unregisters a user. Removing a user that is not a member is
// a no-op.
func (r *Room) RemoveMember(u *User) {
	r.mu.Lock()
	delete(r.members, u.ID)
	r.mu.Unlock()
}

// MemberCount reports the current number of members.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Broadcast enqueues one DELIVERY message with payload room:sender:text into
// every current member's mailbox, the sender included when it is itself a
// member. Mailboxes are unbounded, so a slow receiver never stalls the
// broadcaster.
func (r *Room) Broadcast(sender, text string) {
	payload := DeliveryPayload(r.name, sender, text)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.members {
		u.Mailbox.Enqueue(Message{Tag: TagDelivery, Data: payload})
	}
}
