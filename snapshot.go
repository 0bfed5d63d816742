package fhash

import (
	"fmt"
	"math"
	"time"
)

// VerifyResult is the outcome of comparing against an expected digest.
type VerifyResult int

const (
	VerifyNone VerifyResult = iota
	VerifyMatch
	VerifyMismatch
)

func (v VerifyResult) String() string {
	switch v {
	case VerifyMatch:
		return "match"
	case VerifyMismatch:
		return "mismatch"
	default:
		return "none"
	}
}

// Snapshot is an immutable view of a session for renderers. Metrics are
// derived when the snapshot is taken and never stored on the session.
type Snapshot struct {
	ID             string
	Path           string
	Algorithm      Algorithm
	State          State
	Aborted        bool
	BytesProcessed int64
	FileSize       int64
	Percentage     float64
	Throughput     float64 // bytes per second of unpaused time
	Elapsed        time.Duration
	ETA            time.Duration
	HashResult     Digest
	Error          *ErrorInfo
	Expected       Digest
	Verify         VerifyResult
}

// Snapshot reads the current state. It never blocks.
func (s *Session) Snapshot() Snapshot {
	elapsed := s.activeElapsed()
	snapshot := Snapshot{
		ID:             s.id.String(),
		Path:           s.path,
		Algorithm:      s.algorithm,
		State:          s.state,
		Aborted:        s.aborted,
		BytesProcessed: s.bytesProcessed,
		FileSize:       s.fileSize,
		Percentage:     percentage(s.bytesProcessed, s.fileSize, s.state),
		Throughput:     throughput(s.bytesProcessed, elapsed),
		Elapsed:        elapsed,
		HashResult:     s.hashResult,
		Expected:       s.expected,
		Verify:         s.verify(),
	}
	if s.errorInfo != nil {
		info := *s.errorInfo
		snapshot.Error = &info
	}
	if !s.done() && snapshot.Throughput > 0 {
		remaining := float64(s.fileSize - s.bytesProcessed)
		snapshot.ETA = time.Duration(remaining / snapshot.Throughput * float64(time.Second))
	}
	return snapshot
}

// activeElapsed is wall time since start minus time spent paused,
// frozen once the session ends.
func (s *Session) activeElapsed() time.Duration {
	end := s.endedAt
	if end.IsZero() {
		end = s.clock.Now()
	}
	paused := s.pausedAccum
	if s.state == StatePaused && !s.pausedAt.IsZero() {
		paused += end.Sub(s.pausedAt)
	}
	elapsed := end.Sub(s.startedAt) - paused
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// percentage is in [0, 100] and is exactly 100 only once finished.
func percentage(processed, size int64, state State) float64 {
	if state == StateFinished {
		return 100
	}
	if size <= 0 {
		return 0
	}
	pct := 100 * float64(processed) / float64(size)
	switch {
	case pct < 0:
		return 0
	case pct >= 100:
		return math.Nextafter(100, 0)
	default:
		return pct
	}
}

func throughput(processed int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(processed) / elapsed.Seconds()
}

// Done reports whether the snapshot is final.
func (s Snapshot) Done() bool {
	return s.State.Terminal() || s.Aborted
}

// FormattedProgress renders "processed / total".
func (s Snapshot) FormattedProgress() string {
	return fmt.Sprintf("%s / %s", formatBytes(s.BytesProcessed), formatBytes(s.FileSize))
}

// FormattedThroughput renders the rate, or a dash before any data.
func (s Snapshot) FormattedThroughput() string {
	if s.Throughput <= 0 {
		return "—"
	}
	return formatBytes(int64(s.Throughput)) + "/s"
}

// FormattedETA renders the remaining time rounded to seconds, or a
// dash when it is unknown.
func (s Snapshot) FormattedETA() string {
	if s.Done() || s.ETA <= 0 {
		return "—"
	}
	return s.ETA.Round(time.Second).String()
}

// FormatBytes renders n with binary units and one decimal place.
func FormatBytes(n int64) string {
	return formatBytes(n)
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
