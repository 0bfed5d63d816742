package fhash

// EventKind identifies what a worker is reporting.
type EventKind int

const (
	// EventChunk reports that another chunk was fed to the digest.
	EventChunk EventKind = iota
	// EventCompleted carries the final digest. Always the last event.
	EventCompleted
	// EventFailed carries the failure that stopped the worker. Always the last event.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventChunk:
		return "chunk"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressEvent is sent by the worker over its progress channel. Events
// are delivered in the order chunks were read.
type ProgressEvent struct {
	Kind       EventKind
	BytesAdded int64
	Digest     Digest
	Failure    FailureKind
	Message    string
}

// Terminal reports whether no further events follow this one.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == EventCompleted || e.Kind == EventFailed
}
