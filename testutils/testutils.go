// Package testutils provides fixtures for hashing tests: deterministic
// input files and readers that fail or block on demand.
package testutils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// ErrInjected is returned by readers built with FailAfter.
var ErrInjected = errors.New("injected read failure")

// Content returns size bytes of a pattern that does not repeat on any
// power-of-two boundary.
func Content(size int) []byte {
	content := make([]byte, size)
	for i := range content {
		content[i] = byte(i % 251)
	}
	return content
}

// WriteFile creates name under dir with Content(size) and returns its path.
func WriteFile(t testing.TB, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, Content(size), 0o644))
	return path
}

// FailAfter wraps r so that reads past limit bytes return ErrInjected.
func FailAfter(r io.ReadCloser, limit int64) io.ReadCloser {
	return &failingReader{r: r, remaining: limit}
}

type failingReader struct {
	r         io.ReadCloser
	remaining int64
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.remaining <= 0 {
		return 0, ErrInjected
	}
	if int64(len(p)) > f.remaining {
		p = p[:f.remaining]
	}
	n, err := f.r.Read(p)
	f.remaining -= int64(n)
	return n, err
}

func (f *failingReader) Close() error { return f.r.Close() }

// GatedReader lets a test release reads one at a time. Each Read blocks
// until Step is called.
type GatedReader struct {
	r       io.ReadCloser
	gate    chan struct{}
	entered chan struct{}
	reads   chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewGatedReader wraps r.
func NewGatedReader(r io.ReadCloser) *GatedReader {
	return &GatedReader{
		r:       r,
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1024),
		reads:   make(chan struct{}, 1024),
	}
}

// Step releases exactly one pending or future Read.
func (g *GatedReader) Step() {
	g.gate <- struct{}{}
}

// Entered receives a value whenever a Read starts waiting for Step.
func (g *GatedReader) Entered() <-chan struct{} {
	return g.entered
}

// Reads receives a value after every completed Read.
func (g *GatedReader) Reads() <-chan struct{} {
	return g.reads
}

func (g *GatedReader) Read(p []byte) (int, error) {
	g.entered <- struct{}{}
	<-g.gate
	n, err := g.r.Read(p)
	g.reads <- struct{}{}
	return n, err
}

// Close closes the underlying reader.
func (g *GatedReader) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return g.r.Close()
}

// Closed reports whether Close was called.
func (g *GatedReader) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
