package fhash

import (
	"io"
	"log/slog"
	"os"

	"github.com/drgo/fhash/internal/clock"
)

// DefaultChunkSize is how many bytes the worker reads between control checks.
const DefaultChunkSize = 8192

const defaultProgressBuffer = 64

// Option configures a session and the worker it spawns.
type Option func(*settings)

type settings struct {
	chunkSize      int
	progressBuffer int
	expected       string
	logger         *slog.Logger
	clock          clock.Clock
	open           func(path string) (io.ReadCloser, error)
}

func newSettings(opts []Option) settings {
	s := settings{
		chunkSize:      DefaultChunkSize,
		progressBuffer: defaultProgressBuffer,
		logger:         slog.New(slog.DiscardHandler),
		clock:          clock.Real(),
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithChunkSize sets the read size. Non-positive values are ignored.
func WithChunkSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithProgressBuffer sets the capacity of the progress channel.
func WithProgressBuffer(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.progressBuffer = n
		}
	}
}

// WithExpectedDigest makes a finished session compare its digest
// against hexDigest.
func WithExpectedDigest(hexDigest string) Option {
	return func(s *settings) {
		s.expected = hexDigest
	}
}

// WithLogger sets the logger for session and worker diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces the wall clock used for elapsed time and ticks.
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// withOpener swaps the function used to open the input. Tests use it to
// inject read failures.
func withOpener(open func(path string) (io.ReadCloser, error)) Option {
	return func(s *settings) {
		s.open = open
	}
}
