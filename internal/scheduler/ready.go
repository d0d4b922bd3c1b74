package scheduler

import "sync"

// ReadySignal is a one-shot readiness handshake between the timeline
// surface and the task list surface. The timeline signals once it has
// completed its first render; the task list subscribes and initializes
// its drag handles on receipt.
//
// Signaling is idempotent: subscribers are notified on every signal
// and are expected to tear down old drag handles before creating new
// ones. A subscriber that attaches after the first signal is notified
// immediately.
type ReadySignal struct {
	mu    sync.Mutex
	ready bool
	next  int
	subs  map[int]func()
}

// NewReadySignal returns an unsignaled ReadySignal.
func NewReadySignal() *ReadySignal {
	return &ReadySignal{subs: make(map[int]func())}
}

// Ready reports whether the signal has fired at least once.
func (s *ReadySignal) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Signal marks the surface as ready and notifies every subscriber.
// Handlers run synchronously on the signaling goroutine.
func (s *ReadySignal) Signal() {
	s.mu.Lock()
	s.ready = true
	handlers := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Subscribe registers a handler and returns its cancel function. If
// the signal already fired, the handler runs immediately.
func (s *ReadySignal) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	fireNow := s.ready
	s.mu.Unlock()

	if fireNow {
		fn()
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
