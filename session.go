package fhash

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/drgo/fhash/internal/clock"
)

// State is the lifecycle position of a session.
type State int

const (
	StatePreparing State = iota
	StateHashing
	StatePaused
	StateFinished
	StateError
)

func (s State) String() string {
	switch s {
	case StatePreparing:
		return "preparing"
	case StateHashing:
		return "hashing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state can never change again.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateError
}

// Outcome is how a session ended, as seen by the surrounding program.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeFinished
	OutcomeFailed
	OutcomeAborted
)

// Exit codes reported for each outcome.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitAborted = 130
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "pending"
	}
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeFinished:
		return ExitSuccess
	case OutcomeAborted:
		return ExitAborted
	default:
		return ExitFailure
	}
}

// Session owns the state of one hashing run. All methods except
// StartSession must be called from a single goroutine, the controller;
// the worker only talks to it through the control and progress
// channels, so no field is guarded by a lock.
type Session struct {
	id        uuid.UUID
	path      string
	algorithm Algorithm
	expected  Digest
	clock     clock.Clock
	logger    *slog.Logger

	state          State
	fileSize       int64
	bytesProcessed int64
	// heldBytes counts chunks that were already in flight when the user
	// paused; they are credited on resume so progress stays frozen.
	heldBytes   int64
	startedAt   time.Time
	pausedAt    time.Time
	pausedAccum time.Duration
	endedAt     time.Time
	hashResult  Digest
	errorInfo   *ErrorInfo
	aborted     bool

	control *ControlChannel
	events  chan ProgressEvent
}

// StartSession validates the input and spawns the worker. If path is
// missing, unreadable or not a regular file, the returned session is
// already in StateError and the error wraps ErrOpenFailure; no worker
// is started. An empty file finishes immediately without a worker.
func StartSession(path string, algorithm Algorithm, opts ...Option) (*Session, error) {
	s := newSettings(opts)
	session := &Session{
		id:        uuid.New(),
		path:      path,
		algorithm: algorithm,
		clock:     s.clock,
		logger:    s.logger.With("path", path),
		state:     StatePreparing,
	}
	if !algorithm.known() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
	}
	if s.expected != "" {
		expected, err := ParseDigest(algorithm, s.expected)
		if err != nil {
			return nil, err
		}
		session.expected = expected
	}

	session.startedAt = session.clock.Now()
	size, empty, err := probeInput(path, s.open)
	if err != nil {
		session.fail(FailureOpen, err.Error())
		return session, err
	}
	session.fileSize = size

	if empty {
		session.finish(algorithm.EmptyDigest())
		return session, nil
	}

	session.control = NewControlChannel()
	session.events = make(chan ProgressEvent, s.progressBuffer)
	worker := NewHashWorker(path, algorithm, session.control, session.events, opts...)
	go worker.Run()
	session.state = StateHashing
	session.logger.Debug("session started", "id", session.id, "size", size, "algorithm", algorithm.String())
	return session, nil
}

// ID identifies the session in logs and machine-readable output.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Aborted reports whether the user aborted the session.
func (s *Session) Aborted() bool { return s.aborted }

// Events is the worker's progress channel, closed when the worker
// exits. It is nil when no worker was started.
func (s *Session) Events() <-chan ProgressEvent { return s.events }

// Outcome summarizes how the session ended so far.
func (s *Session) Outcome() Outcome {
	switch {
	case s.aborted:
		return OutcomeAborted
	case s.state == StateFinished:
		return OutcomeFinished
	case s.state == StateError:
		return OutcomeFailed
	default:
		return OutcomePending
	}
}

func (s *Session) done() bool {
	return s.state.Terminal() || s.aborted
}

// Apply folds one worker event into the session. Events that arrive
// after a terminal event, or after an abort, are ignored.
func (s *Session) Apply(event ProgressEvent) {
	if s.done() {
		return
	}
	switch event.Kind {
	case EventChunk:
		if s.state == StatePaused {
			s.heldBytes += event.BytesAdded
			return
		}
		s.credit(event.BytesAdded)
	case EventCompleted:
		if s.state == StatePaused {
			// The worker reached EOF before it saw the pause request.
			s.closePause()
		}
		s.credit(s.heldBytes)
		s.heldBytes = 0
		s.finish(event.Digest)
	case EventFailed:
		s.fail(event.Failure, event.Message)
	}
}

func (s *Session) credit(n int64) {
	s.bytesProcessed += n
	if s.bytesProcessed > s.fileSize {
		// The file grew after it was opened.
		s.logger.Debug("input grew while hashing", "size", s.fileSize, "bytes", s.bytesProcessed)
		s.fileSize = s.bytesProcessed
	}
}

func (s *Session) finish(digest Digest) {
	s.hashResult = digest
	s.state = StateFinished
	s.endedAt = s.clock.Now()
	s.logger.Debug("session finished", "id", s.id, "digest", digest.String())
}

func (s *Session) fail(kind FailureKind, message string) {
	if s.state == StatePaused {
		s.closePause()
	}
	s.errorInfo = &ErrorInfo{Kind: kind, Message: message}
	s.state = StateError
	s.endedAt = s.clock.Now()
	s.logger.Warn("session failed", "id", s.id, "kind", kind.String(), "error", message)
}

func (s *Session) closePause() {
	s.pausedAccum += s.clock.Now().Sub(s.pausedAt)
	s.pausedAt = time.Time{}
}

// Pause asks the worker to stop before its next chunk. It reports
// whether the state changed.
func (s *Session) Pause() bool {
	if s.done() || s.state != StateHashing {
		return false
	}
	s.control.Send(SignalPause)
	s.state = StatePaused
	s.pausedAt = s.clock.Now()
	return true
}

// Resume lets a paused worker continue.
func (s *Session) Resume() bool {
	if s.done() || s.state != StatePaused {
		return false
	}
	s.control.Send(SignalResume)
	s.closePause()
	s.state = StateHashing
	s.credit(s.heldBytes)
	s.heldBytes = 0
	return true
}

// TogglePause pauses a hashing session or resumes a paused one.
func (s *Session) TogglePause() bool {
	if s.state == StatePaused {
		return s.Resume()
	}
	return s.Pause()
}

// Abort stops the worker and waits for it to exit, so the input file is
// closed and no event can arrive afterwards. It is a no-op once the
// session is terminal.
func (s *Session) Abort() {
	if s.done() {
		return
	}
	if s.state == StatePaused {
		s.closePause()
	}
	s.aborted = true
	s.endedAt = s.clock.Now()
	if s.control != nil {
		s.control.Send(SignalAbort)
	}
	s.Wait()
	s.logger.Debug("session aborted", "id", s.id, "bytes", s.bytesProcessed)
}

// Wait blocks until the worker has exited, discarding unread events.
func (s *Session) Wait() {
	if s.events == nil {
		return
	}
	for range s.events {
	}
}

// Send dispatches a control request coming from user input.
func (s *Session) Send(signal ControlSignal) {
	switch signal {
	case SignalPause:
		s.Pause()
	case SignalResume:
		s.Resume()
	case SignalAbort:
		s.Abort()
	}
}

// Run drives the session until it ends. It merges worker events,
// control requests from input, a render tick of the given interval (no
// tick when interval <= 0) and ctx cancellation, which aborts the
// session. observe, if not nil, is called on every tick and once with
// the final snapshot.
func (s *Session) Run(ctx context.Context, input <-chan ControlSignal, interval time.Duration, observe func(Snapshot)) Outcome {
	if observe == nil {
		observe = func(Snapshot) {}
	}
	var ticks <-chan time.Time
	if interval > 0 && !s.done() {
		ticker := s.clock.NewTicker(interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for !s.done() {
		select {
		case <-ctx.Done():
			s.Abort()
		case signal, ok := <-input:
			if !ok {
				input = nil
				break
			}
			s.Send(signal)
		case event, ok := <-s.events:
			if !ok {
				s.fail(FailureRead, "worker exited without a result")
				break
			}
			s.Apply(event)
		case <-ticks:
			observe(s.Snapshot())
		}
	}
	s.Wait()
	observe(s.Snapshot())
	return s.Outcome()
}

// verify compares a finished digest with the expected one.
func (s *Session) verify() VerifyResult {
	if s.expected == nil || s.state != StateFinished {
		return VerifyNone
	}
	if s.hashResult.Equal(s.expected.String()) {
		return VerifyMatch
	}
	return VerifyMismatch
}
