package chat

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLineLen is the maximum length, in bytes, of one encoded wire line
// including the trailing newline.
const MaxLineLen = 255

// Tag identifies the kind of a wire message. Tags never contain a colon
// or a newline.
type Tag string

// The closed set of protocol tags.
const (
	TagSLogin   Tag = "SLOGIN"   // client -> server: register as sender
	TagRLogin   Tag = "RLOGIN"   // client -> server: register as receiver
	TagJoin     Tag = "JOIN"     // client -> server: join/create a room
	TagLeave    Tag = "LEAVE"    // sender -> server: leave the current room
	TagSendAll  Tag = "SENDALL"  // sender -> server: broadcast to the current room
	TagQuit     Tag = "QUIT"     // sender -> server: graceful disconnect
	TagOK       Tag = "OK"       // server -> client: success ack
	TagErr      Tag = "ERR"      // server -> client: failure ack
	TagDelivery Tag = "DELIVERY" // server -> receiver: room:sender:text payload
)

var (
	// ErrInvalidMessage reports a line that is not a valid protocol message.
	ErrInvalidMessage = errors.New("chat: invalid message")

	// ErrMessageTooLong reports a message whose encoded form exceeds
	// MaxLineLen. Nothing is written to the transport in that case.
	ErrMessageTooLong = fmt.Errorf("%w: encoded line exceeds %d bytes", ErrInvalidMessage, MaxLineLen)
)

// Message is one protocol message: a tag plus an uninterpreted data string.
// Data may contain colons but never a line terminator.
type Message struct {
	Tag  Tag
	Data string
}

// Encode renders the message as a newline-terminated wire line.
func (m Message) Encode() (string, error) {
	line := string(m.Tag) + ":" + m.Data + "\n"
	if len(line) > MaxLineLen {
		return "", ErrMessageTooLong
	}
	return line, nil
}

// DecodeMessage parses one wire line. Trailing CR/LF bytes are stripped and
// the line is split on the first colon only; the remainder, colons included,
// becomes Data.
func DecodeMessage(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	tag, data, ok := strings.Cut(line, ":")
	if !ok {
		return Message{}, ErrInvalidMessage
	}
	return Message{Tag: Tag(tag), Data: data}, nil
}

// DeliveryPayload builds the data field of a DELIVERY message.
func DeliveryPayload(room, sender, text string) string {
	return room + ":" + sender + ":" + text
}

// Delivery is a parsed DELIVERY payload.
type Delivery struct {
	Room   string
	Sender string
	Text   string
}

// ParseDelivery splits a DELIVERY data field into its three fields. Text may
// itself contain colons.
func ParseDelivery(data string) (Delivery, error) {
	room, rest, ok := strings.Cut(data, ":")
	if !ok {
		return Delivery{}, ErrInvalidMessage
	}
	sender, text, ok := strings.Cut(rest, ":")
	if !ok {
		return Delivery{}, ErrInvalidMessage
	}
	return Delivery{Room: room, Sender: sender, Text: text}, nil
}
