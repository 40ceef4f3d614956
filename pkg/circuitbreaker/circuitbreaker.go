// Package circuitbreaker stops a client from hammering an unreachable
// server. After enough consecutive transport failures the breaker
// opens and calls fail immediately until a cooldown elapses, then a
// single probe is allowed through.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Allow while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

type state int

const (
	closed state = iota
	open
	halfOpen
)

type Breaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    state
	failures int
	openedAt time.Time
}

// New builds a breaker that opens after threshold consecutive failures
// and probes again after cooldown.
func New(threshold int, cooldown time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether a call may proceed. While open it returns
// ErrOpen until the cooldown elapses, then lets one probe through in
// half-open state.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == open {
		if time.Since(b.openedAt) < b.cooldown {
			return ErrOpen
		}
		b.state = halfOpen
	}
	return nil
}

// Success records a completed call and closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = closed
	b.failures = 0
}

// Failure records a transport failure. The half-open probe failing
// reopens immediately, otherwise the breaker opens once the
// consecutive failure count reaches the threshold.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == halfOpen || b.failures >= b.threshold {
		b.state = open
		b.openedAt = time.Now()
	}
}
