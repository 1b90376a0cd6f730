package events

import (
	"sync"
	"time"
)

type message struct {
	Kind string
	Data []byte
	At   time.Time
}

// buffer queues messages between Write and the flushing goroutine.
// It never blocks producers and never drops a message.
type buffer struct {
	mu      sync.Mutex
	pending []*message
}

func newBuffer() *buffer {
	return &buffer{}
}

// PushBack appends msg and returns the queue length.
func (b *buffer) PushBack(msg *message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, msg)
	return len(b.pending)
}

// Drain hands over everything queued so far in one lock acquisition.
func (b *buffer) Drain() []*message {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.pending
	b.pending = nil
	return batch
}
