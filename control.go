package fhash

import "sync"

// ControlSignal is a request from the controller to the worker.
type ControlSignal int

const (
	SignalPause ControlSignal = iota + 1
	SignalResume
	SignalAbort
)

func (s ControlSignal) String() string {
	switch s {
	case SignalPause:
		return "pause"
	case SignalResume:
		return "resume"
	case SignalAbort:
		return "abort"
	default:
		return "none"
	}
}

// ControlChannel holds at most one outstanding signal. Sending while a
// previous signal is still unconsumed replaces it.
type ControlChannel struct {
	mu   sync.Mutex // serializes senders
	slot chan ControlSignal
}

// NewControlChannel returns an empty channel.
func NewControlChannel() *ControlChannel {
	return &ControlChannel{slot: make(chan ControlSignal, 1)}
}

// Send never blocks.
func (c *ControlChannel) Send(signal ControlSignal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case c.slot <- signal:
			return
		default:
		}
		// Slot is full: drop the stale signal. The receiver may have
		// taken it in the meantime, in which case the retry succeeds.
		select {
		case <-c.slot:
		default:
		}
	}
}

// Poll returns the pending signal, if any, without blocking.
func (c *ControlChannel) Poll() (ControlSignal, bool) {
	select {
	case signal := <-c.slot:
		return signal, true
	default:
		return 0, false
	}
}

// Wait blocks until a signal arrives.
func (c *ControlChannel) Wait() ControlSignal {
	return <-c.slot
}
