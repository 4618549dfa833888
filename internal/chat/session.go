package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"time"
)

// mailboxPollInterval bounds how long an idle receiver waits before checking
// for termination conditions.
const mailboxPollInterval = time.Second

// HandleSession runs the relay protocol over one accepted byte stream until
// the peer disconnects or quits. It closes the transport on every exit path.
func HandleSession(ctx context.Context, registry *Registry, rwc io.ReadWriteCloser, logger *log.Logger) {
	conn := NewConn(rwc)
	defer conn.Close()

	if logger == nil {
		logger = log.Default()
	}

	newSession(registry, conn, logger).run(ctx)
}

type session struct {
	registry *Registry
	conn     *Conn
	logger   *log.Logger
}

func newSession(registry *Registry, conn *Conn, logger *log.Logger) *session {
	return &session{
		registry: registry,
		conn:     conn,
		logger:   logger,
	}
}

// run reads the login message and dispatches to the sender or receiver loop.
// A malformed login gets an ERR reply; a dead transport terminates silently.
func (s *session) run(ctx context.Context) {
	login, err := s.conn.Receive()
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			_ = s.conn.Send(Message{Tag: TagErr, Data: "invalid message"})
		}
		return
	}

	switch login.Tag {
	case TagSLogin:
		if err := s.conn.Send(Message{Tag: TagOK, Data: "welcome " + login.Data}); err != nil {
			return
		}
		s.senderLoop(login.Data)
	case TagRLogin:
		if err := s.conn.Send(Message{Tag: TagOK, Data: "welcome " + login.Data}); err != nil {
			return
		}
		s.receiverLoop(ctx, login.Data)
	default:
		_ = s.conn.Send(Message{Tag: TagErr, Data: "invalid login"})
	}
}

// senderLoop processes commands from a sender connection. The sender is in
// at most one room at a time; a single bad line is reported and the loop
// continues.
func (s *session) senderLoop(username string) {
	var current *Room

	for {
		msg, err := s.conn.Receive()
		if err != nil {
			if errors.Is(err, ErrInvalidMessage) {
				if s.conn.Send(Message{Tag: TagErr, Data: "invalid message"}) != nil {
					return
				}
				continue
			}
			return
		}

		switch msg.Tag {
		case TagJoin:
			current = s.registry.FindOrCreateRoom(msg.Data)
			if s.conn.Send(Message{Tag: TagOK, Data: "joined " + msg.Data}) != nil {
				return
			}
		case TagLeave:
			if current == nil {
				if s.conn.Send(Message{Tag: TagErr, Data: "not in a room"}) != nil {
					return
				}
				continue
			}
			current = nil
			if s.conn.Send(Message{Tag: TagOK, Data: "left room"}) != nil {
				return
			}
		case TagSendAll:
			if current == nil {
				if s.conn.Send(Message{Tag: TagErr, Data: "not in a room"}) != nil {
					return
				}
				continue
			}
			current.Broadcast(username, msg.Data)
			if s.conn.Send(Message{Tag: TagOK, Data: "message sent"}) != nil {
				return
			}
		case TagQuit:
			_ = s.conn.Send(Message{Tag: TagOK, Data: "bye"})
			return
		default:
			if s.conn.Send(Message{Tag: TagErr, Data: "invalid command"}) != nil {
				return
			}
		}
	}
}

// receiverLoop joins the receiver to exactly one room, then drains its
// mailbox to the peer until the peer is gone or the server shuts down.
// Membership is always removed on exit so rooms never hold stale users.
func (s *session) receiverLoop(ctx context.Context, username string) {
	msg, err := s.conn.Receive()
	if err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			_ = s.conn.Send(Message{Tag: TagErr, Data: "invalid message"})
		}
		return
	}
	if msg.Tag != TagJoin {
		_ = s.conn.Send(Message{Tag: TagErr, Data: "expected join"})
		return
	}

	room := s.registry.FindOrCreateRoom(msg.Data)
	user := NewUser(username)
	room.AddMember(user)
	defer room.RemoveMember(user)

	if err := s.conn.Send(Message{Tag: TagOK, Data: "joined " + msg.Data}); err != nil {
		return
	}

	for {
		delivery, ok := user.Mailbox.DequeueTimeout(mailboxPollInterval)
		if !ok {
			// Empty poll: nothing to forward, check for shutdown and retry.
			select {
			case <-ctx.Done():
				return
			default:
			}
			continue
		}
		if err := s.conn.Send(delivery); err != nil {
			return
		}
	}
}
