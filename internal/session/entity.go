package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/ludo/internal/protocol"
)

// BridgeEntity is a connection's outbox. The coordinator pushes outbound
// events into it and the transport write loop drains Events.
type BridgeEntity struct {
	id     string
	events chan protocol.Outbound
	mu     sync.Mutex
	closed bool
}

// NewBridgeEntity creates a BridgeEntity for the given connection id.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a BridgeEntity with an open events channel.
func NewBridgeEntity(id string, bufferSize int) *BridgeEntity {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &BridgeEntity{
		id:     id,
		events: make(chan protocol.Outbound, bufferSize),
	}
}

// ID returns the connection identifier.
func (e *BridgeEntity) ID() string {
	return e.id
}

// Push enqueues msg without blocking.
//
// Postcondition: msg is enqueued, or an error is returned if the entity is closed or full.
func (e *BridgeEntity) Push(msg protocol.Outbound) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("connection %s: %w", e.id, ErrClosed)
	}
	select {
	case e.events <- msg:
		return nil
	default:
		return fmt.Errorf("connection %s: %w", e.id, ErrOutboxFull)
	}
}

// Events returns the read-only events channel. It is closed by Close.
func (e *BridgeEntity) Events() <-chan protocol.Outbound {
	return e.events
}

// Close marks the entity as closed and closes the events channel.
//
// Postcondition: The events channel is closed. Further Push calls return ErrClosed.
func (e *BridgeEntity) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.closed {
		e.closed = true
		close(e.events)
	}
	return nil
}

// IsClosed reports whether the entity has been closed.
func (e *BridgeEntity) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
