package fhash

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlChannelLastWriterWins(t *testing.T) {
	control := NewControlChannel()

	_, ok := control.Poll()
	assert.False(t, ok, "new channel should be empty")

	control.Send(SignalPause)
	control.Send(SignalResume)
	control.Send(SignalAbort)

	signal, ok := control.Poll()
	assert.True(t, ok)
	assert.Equal(t, SignalAbort, signal)

	_, ok = control.Poll()
	assert.False(t, ok, "each send is consumed at most once")
}

func TestControlChannelWaitBlocksUntilSend(t *testing.T) {
	control := NewControlChannel()
	received := make(chan ControlSignal)
	go func() { received <- control.Wait() }()

	control.Send(SignalResume)
	assert.Equal(t, SignalResume, <-received)
}

func TestControlChannelConcurrentSendersNeverBlock(t *testing.T) {
	control := NewControlChannel()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				control.Send(SignalPause)
			}
		}()
	}
	wg.Wait()

	signal, ok := control.Poll()
	assert.True(t, ok)
	assert.Equal(t, SignalPause, signal)
	_, ok = control.Poll()
	assert.False(t, ok)
}
