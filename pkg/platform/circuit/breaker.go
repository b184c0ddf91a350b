// Package circuit guards calls to external collaborators, such as the
// grading service, with a two-state breaker. Consecutive failures trip it
// open; consecutive successes while open close it again. Callers decide what
// "open" means for them (a fallback path, a shed request); the breaker only
// tracks health and reports transitions so they can be logged once.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	// StateClosed: the collaborator is considered healthy.
	StateClosed State = iota
	// StateOpen: the collaborator is considered down.
	StateOpen
)

// StateChange reports a transition caused by the call that returned it.
// At most one of the fields is set.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker tracks consecutive outcomes for one named collaborator. All
// methods are safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	name     string
	state    State
	failures int
	recovery int

	tripAfter  int
	closeAfter int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithTripThreshold sets how many consecutive failures open the breaker.
func WithTripThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.tripAfter = n
		}
	}
}

// WithRecoveryThreshold sets how many consecutive successes close an open
// breaker.
func WithRecoveryThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.closeAfter = n
		}
	}
}

// New creates a closed breaker. The name identifies the collaborator in
// logs. Defaults: trip after 5 failures, recover after 3 successes.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:       name,
		state:      StateClosed,
		tripAfter:  5,
		closeAfter: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the collaborator name the breaker was created with.
func (b *Breaker) Name() string { return b.name }

// IsOpen reports whether the breaker is currently tripped.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateOpen
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RecordFailure notes a failed call. The returned bool is true when the
// breaker is open after this call, meaning the caller should degrade.
func (b *Breaker) RecordFailure() (open bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.recovery = 0

	if b.state == StateOpen {
		return true, StateChange{}
	}
	if b.failures >= b.tripAfter {
		b.state = StateOpen
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess notes a successful call. The returned bool is true when the
// breaker is closed after this call, meaning the primary path is trusted.
func (b *Breaker) RecordSuccess() (closed bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		b.recovery++
		if b.recovery >= b.closeAfter {
			b.state = StateClosed
			b.failures = 0
			b.recovery = 0
			return true, StateChange{Closed: true}
		}
		return false, StateChange{}
	}

	b.failures = 0
	return true, StateChange{}
}

// Reset forces the breaker closed and clears all counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.recovery = 0
}
