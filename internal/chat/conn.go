package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
)

// Conn is a buffered, line-oriented transport carrying one Message per line.
// A Conn is owned by exactly one goroutine for its whole life; it is not safe
// for concurrent use.
type Conn struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an open byte stream. The Conn takes ownership of rwc and
// closes it on Close.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		rwc:    rwc,
		reader: bufio.NewReaderSize(rwc, MaxLineLen),
	}
}

// Dial opens a client-side TCP transport to the given address.
func Dial(addr string) (*Conn, error) {
	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("chat: dial %q: %w", addr, err)
	}
	return NewConn(nc), nil
}

// Send writes one encoded message. If encoding fails the error satisfies
// errors.Is(err, ErrInvalidMessage) and no bytes are written; any other error
// is a transport failure.
func (c *Conn) Send(msg Message) error {
	line, err := msg.Encode()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(c.rwc, line); err != nil {
		return fmt.Errorf("chat: send: %w", err)
	}
	return nil
}

// Receive reads and decodes one line. A decode failure satisfies
// errors.Is(err, ErrInvalidMessage); any other error means the transport is
// gone and the connection is unusable.
func (c *Conn) Receive() (Message, error) {
	line, err := c.readLine()
	if err != nil {
		return Message{}, fmt.Errorf("chat: receive: %w", err)
	}
	return DecodeMessage(line)
}

// readLine reads up to MaxLineLen bytes, stopping after a newline. An
// over-long line is returned as-is; the remainder becomes the next line.
func (c *Conn) readLine() (string, error) {
	buf := make([]byte, 0, 64)
	for len(buf) < MaxLineLen {
		b, err := c.reader.ReadByte()
		if err != nil {
			if len(buf) > 0 && errors.Is(err, io.EOF) {
				return string(buf), nil
			}
			return "", err
		}
		buf = append(buf, b)
		if b == '\n' {
			break
		}
	}
	return string(buf), nil
}

// Close releases the underlying transport. Safe to call multiple times.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.rwc.Close()
	})
	return c.closeErr
}
