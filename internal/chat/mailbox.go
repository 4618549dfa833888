package chat

import (
	"context"
	"sync"
	"time"
)

// Mailbox is an unbounded FIFO of messages with one consumer and any number
// of concurrent producers. Enqueue never blocks; delivery order matches
// enqueue order.
type Mailbox struct {
	mu    sync.Mutex
	queue []Message

	// avail holds at most one wakeup token for the consumer.
	avail chan struct{}
}

// NewMailbox constructs an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{avail: make(chan struct{}, 1)}
}

// Enqueue appends a message and wakes the consumer if it is waiting.
func (m *Mailbox) Enqueue(msg Message) {
	m.mu.Lock()
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.avail <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the head, blocking until a message arrives or
// ctx is done. Returns false only on cancellation.
func (m *Mailbox) Dequeue(ctx context.Context) (Message, bool) {
	for {
		if msg, ok := m.take(); ok {
			return msg, true
		}
		select {
		case <-m.avail:
		case <-ctx.Done():
			return Message{}, false
		}
	}
}

// DequeueTimeout removes and returns the head, blocking at most d. Returns
// false on timeout; the caller is expected to retry.
func (m *Mailbox) DequeueTimeout(d time.Duration) (Message, bool) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		if msg, ok := m.take(); ok {
			return msg, true
		}
		select {
		case <-m.avail:
		case <-timer.C:
			return Message{}, false
		}
	}
}

// Len reports the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Mailbox) take() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return Message{}, false
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}
