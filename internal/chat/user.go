package chat

import "github.com/google/uuid"

// User is a receiver-side participant: an identity plus the mailbox its
// room deliveries land in. A User lives exactly as long as its connection.
type User struct {
	ID       uuid.UUID
	Username string
	Mailbox  *Mailbox
}

// NewUser constructs a User with a fresh identity and an empty mailbox.
func NewUser(username string) *User {
	return &User{
		ID:       uuid.New(),
		Username: username,
		Mailbox:  NewMailbox(),
	}
}
