// Package rate paces remote API calls against a per-minute budget.
// The remote service's rate limits are the binding constraint on the
// whole job, so all waiting is explicit bounded sleeping between
// calls, never concurrency.
package rate

import (
	"time"

	"github.com/WatchBeam/clock"
)

// Pacer sleeps a fixed interval between remote calls.
type Pacer struct {
	clock    clock.Clock
	interval time.Duration
}

// NewPacer builds a Pacer allowing perMinute calls per minute. A zero
// or negative budget disables pacing.
func NewPacer(perMinute int) *Pacer {
	return NewPacerWithClock(perMinute, clock.C)
}

// NewPacerWithClock is NewPacer with an injectable clock for tests.
func NewPacerWithClock(perMinute int, c clock.Clock) *Pacer {
	p := &Pacer{clock: c}
	if perMinute > 0 {
		p.interval = time.Minute / time.Duration(perMinute)
	}
	return p
}

// Interval is the wait applied between calls.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait blocks for one pacing interval.
func (p *Pacer) Wait() {
	if p.interval <= 0 {
		return
	}
	<-p.clock.After(p.interval)
}
