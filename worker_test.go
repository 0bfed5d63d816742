package fhash

import (
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drgo/fhash/testutils"
)

// collect runs the worker to completion and returns everything it sent.
func collect(worker *HashWorker, events <-chan ProgressEvent) []ProgressEvent {
	go worker.Run()
	var all []ProgressEvent
	for event := range events {
		all = append(all, event)
	}
	return all
}

func TestHashWorkerStreamsChunks(t *testing.T) {
	const size = 3*1024 + 100
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", size)

	control := NewControlChannel()
	events := make(chan ProgressEvent, 4)
	worker := NewHashWorker(path, SHA256, control, events, WithChunkSize(1024))
	all := collect(worker, events)
	require.NotEmpty(t, all)

	var total int64
	for _, event := range all[:len(all)-1] {
		require.Equal(t, EventChunk, event.Kind)
		assert.LessOrEqual(t, event.BytesAdded, int64(1024))
		assert.Positive(t, event.BytesAdded)
		total += event.BytesAdded
	}
	assert.Equal(t, int64(size), total)

	last := all[len(all)-1]
	require.Equal(t, EventCompleted, last.Kind)
	assert.True(t, last.Terminal())
	want := sha256.Sum256(testutils.Content(size))
	assert.Equal(t, Digest(want[:]), last.Digest)
}

func TestHashWorkerMatchesOneShotDigest(t *testing.T) {
	const size = 70_001
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", size)
	content := testutils.Content(size)

	for _, algorithm := range Algorithms() {
		t.Run(algorithm.String(), func(t *testing.T) {
			events := make(chan ProgressEvent, 16)
			all := collect(NewHashWorker(path, algorithm, NewControlChannel(), events, WithChunkSize(4096)), events)

			reference := algorithm.New()
			reference.Write(content)
			last := all[len(all)-1]
			require.Equal(t, EventCompleted, last.Kind)
			assert.Equal(t, Digest(reference.Sum(nil)), last.Digest)
		})
	}
}

func TestHashWorkerOpenFailure(t *testing.T) {
	events := make(chan ProgressEvent, 1)
	path := filepath.Join(t.TempDir(), "missing")
	all := collect(NewHashWorker(path, SHA256, NewControlChannel(), events), events)

	require.Len(t, all, 1)
	assert.Equal(t, EventFailed, all[0].Kind)
	assert.Equal(t, FailureOpen, all[0].Failure)
	assert.Contains(t, all[0].Message, "missing")
}

func TestHashWorkerReadFailureIsTerminal(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", 10_000)
	opener := func(path string) (io.ReadCloser, error) {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return testutils.FailAfter(file, 3000), nil
	}

	events := make(chan ProgressEvent, 16)
	worker := NewHashWorker(path, SHA256, NewControlChannel(), events, WithChunkSize(1024), withOpener(opener))
	all := collect(worker, events)

	last := all[len(all)-1]
	assert.Equal(t, EventFailed, last.Kind)
	assert.Equal(t, FailureRead, last.Failure)
	assert.Equal(t, testutils.ErrInjected.Error(), last.Message)
	for _, event := range all[:len(all)-1] {
		assert.Equal(t, EventChunk, event.Kind, "no digest may precede a read failure")
	}
}

func TestHashWorkerAbortBeforeFirstRead(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", 4096)
	control := NewControlChannel()
	control.Send(SignalAbort)

	events := make(chan ProgressEvent, 16)
	all := collect(NewHashWorker(path, SHA256, control, events), events)
	assert.Empty(t, all)
}

func TestHashWorkerPauseThenAbortEmitsNothing(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", 4096)
	control := NewControlChannel()
	control.Send(SignalPause)

	events := make(chan ProgressEvent, 16)
	go NewHashWorker(path, SHA256, control, events).Run()
	control.Send(SignalAbort)

	var all []ProgressEvent
	for event := range events {
		all = append(all, event)
	}
	assert.Empty(t, all, "neither Completed nor Failed may follow an abort")
}

func TestHashWorkerResumesAfterPause(t *testing.T) {
	const size = 5000
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", size)
	file, err := os.Open(path)
	require.NoError(t, err)
	gated := testutils.NewGatedReader(file)
	opener := func(string) (io.ReadCloser, error) { return gated, nil }

	control := NewControlChannel()
	events := make(chan ProgressEvent, 16)
	go NewHashWorker(path, SHA256, control, events, WithChunkSize(1000), withOpener(opener)).Run()

	// First chunk, then pause while the worker waits in its next Read.
	<-gated.Entered()
	gated.Step()
	first := <-events
	assert.Equal(t, int64(1000), first.BytesAdded)
	<-gated.Entered()
	control.Send(SignalPause)
	gated.Step()
	second := <-events
	assert.Equal(t, EventChunk, second.Kind)

	// The worker is now parked on the control channel, not in Read.
	select {
	case <-gated.Entered():
		t.Fatal("worker read while paused")
	default:
	}

	control.Send(SignalResume)
	go func() {
		// Three more data reads and the EOF read.
		for i := 0; i < 4; i++ {
			gated.Step()
		}
	}()

	total := first.BytesAdded + second.BytesAdded
	var last ProgressEvent
	for event := range events {
		total += event.BytesAdded
		last = event
	}
	assert.Equal(t, int64(size), total)
	require.Equal(t, EventCompleted, last.Kind)
	want := sha256.Sum256(testutils.Content(size))
	assert.Equal(t, Digest(want[:]), last.Digest)
	assert.True(t, gated.Closed())
}

func TestHashWorkerUnknownAlgorithmFails(t *testing.T) {
	path := testutils.WriteFile(t, t.TempDir(), "input.bin", 100)
	events := make(chan ProgressEvent, 1)
	all := collect(NewHashWorker(path, Algorithm(99), NewControlChannel(), events), events)

	require.Len(t, all, 1)
	assert.Equal(t, EventFailed, all[0].Kind)
	assert.Contains(t, all[0].Message, ErrUnknownAlgorithm.Error())
}
