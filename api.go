package fhash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrOpenFailure           = errors.New("cannot open input")
	ErrReadFailure           = errors.New("read failed")
	ErrNotRegularFile        = errors.New("not a regular file")
	ErrUnknownAlgorithm      = errors.New("unknown hash algorithm")
	ErrInvalidExpectedDigest = errors.New("invalid expected digest")
)

// FailureKind classifies why a session ended in the Error state.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureOpen means the input could not be opened; no hashing happened.
	FailureOpen
	// FailureRead means an I/O error interrupted hashing; partial
	// progress is discarded.
	FailureRead
)

func (k FailureKind) String() string {
	switch k {
	case FailureOpen:
		return "open failure"
	case FailureRead:
		return "read failure"
	default:
		return "none"
	}
}

// Sentinel maps the kind back to its sentinel error.
func (k FailureKind) Sentinel() error {
	switch k {
	case FailureOpen:
		return ErrOpenFailure
	case FailureRead:
		return ErrReadFailure
	default:
		return nil
	}
}

// ErrorInfo is what a session records when it reaches the Error state.
type ErrorInfo struct {
	Kind    FailureKind
	Message string
}

func (e *ErrorInfo) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is match ErrOpenFailure and ErrReadFailure.
func (e *ErrorInfo) Unwrap() error {
	return e.Kind.Sentinel()
}

// probeInput checks that path names a regular file we can open, and
// returns its size. It runs before any worker is spawned. The type is
// checked before opening, since opening a FIFO blocks until a writer
// appears. empty is true only when a read confirms there is no data:
// some files (under /proc, for instance) report size 0 but have content.
func probeInput(path string, open func(string) (io.ReadCloser, error)) (size int64, empty bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	if info.IsDir() {
		return 0, false, fmt.Errorf("%w: %s is a directory: %w", ErrOpenFailure, path, ErrNotRegularFile)
	}
	if !info.Mode().IsRegular() {
		return 0, false, fmt.Errorf("%w: %s (%s): %w", ErrOpenFailure, path, info.Mode().Type(), ErrNotRegularFile)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	file.Close()
	if info.Size() > 0 {
		return info.Size(), false, nil
	}

	// Judge emptiness from the same source the worker will read.
	input, err := open(path)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrOpenFailure, err)
	}
	defer input.Close()
	n, err := input.Read(make([]byte, 1))
	return 0, n == 0 && errors.Is(err, io.EOF), nil
}

// HashFile hashes path to completion without pausing or progress
// reporting. It uses the same worker as interactive sessions, so the
// digest is identical. Cancelling ctx aborts the worker.
func HashFile(ctx context.Context, path string, algorithm Algorithm, opts ...Option) (Digest, error) {
	session, err := StartSession(path, algorithm, opts...)
	if err != nil {
		return nil, err
	}
	switch session.Run(ctx, nil, 0, nil) {
	case OutcomeFinished:
		return session.Snapshot().HashResult, nil
	case OutcomeFailed:
		return nil, session.Snapshot().Error
	default:
		return nil, ctx.Err()
	}
}
