package transfer

import "sync"

// mailbox is an unbounded FIFO of messages for the dispatcher. Posting never
// blocks, so executor goroutines cannot stall on a busy loop.
type mailbox struct {
	mu     sync.Mutex
	items  []message
	closed bool

	// notify holds at most one wakeup for the dispatcher.
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// post appends msg and reports whether the mailbox still accepts messages.
func (m *mailbox) post(msg message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// drain takes every queued message in arrival order.
func (m *mailbox) drain() []message {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
