//go:build unix

package fhash

import (
	"errors"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionRejectsFIFO(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fifo")
	require.NoError(t, syscall.Mkfifo(path, 0o644))

	type result struct {
		session *Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		session, err := StartSession(path, SHA256)
		done <- result{session, err}
	}()

	select {
	case got := <-done:
		require.Error(t, got.err)
		assert.True(t, errors.Is(got.err, ErrOpenFailure), "got %v", got.err)
		assert.True(t, errors.Is(got.err, ErrNotRegularFile), "got %v", got.err)
		require.NotNil(t, got.session)
		assert.Nil(t, got.session.Events(), "no worker should be spawned")
		assert.Equal(t, StateError, got.session.State())
	case <-time.After(5 * time.Second):
		t.Fatal("StartSession blocked on a FIFO")
	}
}
