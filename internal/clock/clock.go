// Package clock abstracts wall-clock time so that throughput and ETA
// math can be tested deterministically.
//
// Production code uses Real(). Tests use Fake(start) and move time with
// Advance; tickers created from a fake clock fire during Advance.
package clock

import "time"

// Clock is the subset of the time package the hashing session needs.
type Clock interface {
	Now() time.Time

	// NewTicker behaves like time.NewTicker. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C, which has capacity 1. Ticks are dropped
// when the reader falls behind.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns the ticker off. It does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stopFunc: ticker.Stop}
}
