package fhash

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// HashWorker streams one file through a digest, reporting every chunk
// on its progress channel and checking its control channel between
// reads. It never touches session state directly.
type HashWorker struct {
	path      string
	algorithm Algorithm
	chunkSize int
	open      func(path string) (io.ReadCloser, error)
	logger    *slog.Logger

	control  *ControlChannel
	progress chan<- ProgressEvent
}

// NewHashWorker prepares a worker. Nothing is opened until Run.
func NewHashWorker(path string, algorithm Algorithm, control *ControlChannel, progress chan<- ProgressEvent, opts ...Option) *HashWorker {
	s := newSettings(opts)
	return &HashWorker{
		path:      path,
		algorithm: algorithm,
		chunkSize: s.chunkSize,
		open:      s.open,
		logger:    s.logger.With("path", path, "algorithm", algorithm.String()),
		control:   control,
		progress:  progress,
	}
}

// Run hashes the file and closes the progress channel when it returns.
// The last event is Completed or Failed, unless the worker was aborted,
// in which case nothing is sent after the abort is observed.
func (w *HashWorker) Run() {
	defer close(w.progress)

	if !w.algorithm.known() {
		w.progress <- ProgressEvent{Kind: EventFailed, Failure: FailureOpen, Message: fmt.Sprintf("%v: %s", ErrUnknownAlgorithm, w.algorithm)}
		return
	}

	file, err := w.open(w.path)
	if err != nil {
		w.logger.Warn("open failed", "error", err)
		w.progress <- ProgressEvent{Kind: EventFailed, Failure: FailureOpen, Message: err.Error()}
		return
	}
	defer file.Close()
	w.logger.Debug("hashing started", "chunk_size", w.chunkSize)

	hasher := w.algorithm.New()
	buffer := make([]byte, w.chunkSize)
	var total int64
	for {
		if signal, ok := w.control.Poll(); ok && !w.obey(signal) {
			w.logger.Debug("aborted", "bytes", total)
			return
		}

		n, err := file.Read(buffer)
		if n > 0 {
			// hash.Hash.Write never returns an error.
			hasher.Write(buffer[:n])
			total += int64(n)
			w.progress <- ProgressEvent{Kind: EventChunk, BytesAdded: int64(n)}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.logger.Warn("read failed", "bytes", total, "error", err)
			w.progress <- ProgressEvent{Kind: EventFailed, Failure: FailureRead, Message: err.Error()}
			return
		}
	}

	digest := Digest(hasher.Sum(nil))
	w.logger.Debug("hashing finished", "bytes", total, "digest", digest.String())
	w.progress <- ProgressEvent{Kind: EventCompleted, Digest: digest}
}

// obey applies a control signal and reports whether the worker should
// keep going. Pause blocks here until Resume or Abort arrives.
func (w *HashWorker) obey(signal ControlSignal) bool {
	switch signal {
	case SignalAbort:
		return false
	case SignalPause:
		w.logger.Debug("paused")
		for {
			switch w.control.Wait() {
			case SignalResume:
				w.logger.Debug("resumed")
				return true
			case SignalAbort:
				return false
			}
		}
	default:
		return true
	}
}
