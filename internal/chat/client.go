package chat

import (
	"errors"
	"fmt"
)

// replyError surfaces an ERR reply, or an unexpected tag, as an error.
func replyError(verb string, reply Message) error {
	switch reply.Tag {
	case TagOK:
		return nil
	case TagErr:
		return fmt.Errorf("chat: %s rejected: %s", verb, reply.Data)
	default:
		return fmt.Errorf("chat: unexpected %s reply tag %q", verb, reply.Tag)
	}
}

// roundTrip sends a command and checks the server's ack.
func roundTrip(conn *Conn, verb string, msg Message) error {
	if err := conn.Send(msg); err != nil {
		return err
	}
	reply, err := conn.Receive()
	if err != nil {
		return err
	}
	return replyError(verb, reply)
}

// SenderClient drives the sender half of the protocol: login once, then any
// number of join/leave/send commands, each acknowledged by the server.
type SenderClient struct {
	conn *Conn
}

// DialSender connects to the relay and performs the SLOGIN handshake.
func DialSender(addr, username string) (*SenderClient, error) {
	conn, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	if err := roundTrip(conn, "login", Message{Tag: TagSLogin, Data: username}); err != nil {
		conn.Close()
		return nil, err
	}
	return &SenderClient{conn: conn}, nil
}

// Join enters the named room, creating it if needed.
func (c *SenderClient) Join(room string) error {
	return roundTrip(c.conn, "join", Message{Tag: TagJoin, Data: room})
}

// Leave exits the current room.
func (c *SenderClient) Leave() error {
	return roundTrip(c.conn, "leave", Message{Tag: TagLeave})
}

// SendAll broadcasts text to the current room.
func (c *SenderClient) SendAll(text string) error {
	return roundTrip(c.conn, "send", Message{Tag: TagSendAll, Data: text})
}

// Quit disconnects gracefully and closes the transport.
func (c *SenderClient) Quit() error {
	err := roundTrip(c.conn, "quit", Message{Tag: TagQuit})
	c.conn.Close()
	return err
}

// Close releases the transport without the QUIT exchange.
func (c *SenderClient) Close() error {
	return c.conn.Close()
}

// ReceiverClient drives the receiver half of the protocol: login, join one
// room, then drain deliveries until the connection closes.
type ReceiverClient struct {
	conn *Conn
}

// DialReceiver connects to the relay, performs the RLOGIN handshake and
// joins the given room.
func DialReceiver(addr, username, room string) (*ReceiverClient, error) {
	conn, err := Dial(addr)
	if err != nil {
		return nil, err
	}
	if err := roundTrip(conn, "login", Message{Tag: TagRLogin, Data: username}); err != nil {
		conn.Close()
		return nil, err
	}
	if err := roundTrip(conn, "join", Message{Tag: TagJoin, Data: room}); err != nil {
		conn.Close()
		return nil, err
	}
	return &ReceiverClient{conn: conn}, nil
}

// Next blocks until the next broadcast arrives and returns its parsed
// payload. Unknown or malformed lines are skipped.
func (c *ReceiverClient) Next() (Delivery, error) {
	for {
		msg, err := c.conn.Receive()
		if err != nil {
			if errors.Is(err, ErrInvalidMessage) {
				continue
			}
			return Delivery{}, err
		}
		if msg.Tag != TagDelivery {
			continue
		}
		delivery, err := ParseDelivery(msg.Data)
		if err != nil {
			continue
		}
		return delivery, nil
	}
}

// Close releases the transport.
func (c *ReceiverClient) Close() error {
	return c.conn.Close()
}
