package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/drgo/fhash"
)

// reporter renders session snapshots outside the interactive view.
type reporter interface {
	Progress(snapshot fhash.Snapshot)
	Final(snapshot fhash.Snapshot)
}

type plainOptions struct {
	live    bool // redraw a progress line on stderr
	quiet   bool
	colored bool
}

// plainReporter prints "<hex>  <path>" on out, the format sha256sum
// uses, and everything else on errOut.
type plainReporter struct {
	out, errOut io.Writer
	opts        plainOptions
	good, bad   *color.Color
	faint       *color.Color
	drawn       bool
}

func newPlainReporter(out, errOut io.Writer, opts plainOptions) *plainReporter {
	r := &plainReporter{
		out:    out,
		errOut: errOut,
		opts:   opts,
		good:   color.New(color.FgGreen, color.Bold),
		bad:    color.New(color.FgRed, color.Bold),
		faint:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{r.good, r.bad, r.faint} {
		if opts.colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

func (r *plainReporter) Progress(snapshot fhash.Snapshot) {
	if !r.opts.live {
		return
	}
	line := fmt.Sprintf("%s %5.1f%%  %s  %s  ETA %s",
		snapshot.Algorithm, snapshot.Percentage,
		snapshot.FormattedProgress(), snapshot.FormattedThroughput(), snapshot.FormattedETA())
	if snapshot.State == fhash.StatePaused {
		line += "  " + r.faint.Sprint("[paused]")
	}
	fmt.Fprintf(r.errOut, "\r%-80s", line)
	r.drawn = true
}

func (r *plainReporter) Final(snapshot fhash.Snapshot) {
	if r.drawn {
		fmt.Fprintln(r.errOut)
		r.drawn = false
	}
	switch {
	case snapshot.Aborted:
		if !r.opts.quiet {
			fmt.Fprintf(r.errOut, "%s %s after %s\n", r.bad.Sprint("aborted"), snapshot.Path, fhash.FormatBytes(snapshot.BytesProcessed))
		}
	case snapshot.State == fhash.StateError:
		message := "unknown error"
		if snapshot.Error != nil {
			message = snapshot.Error.Error()
		}
		fmt.Fprintf(r.errOut, "%s %s: %s\n", r.bad.Sprint("error"), snapshot.Path, message)
	case snapshot.State == fhash.StateFinished:
		fmt.Fprintf(r.out, "%s  %s\n", snapshot.HashResult, snapshot.Path)
		switch snapshot.Verify {
		case fhash.VerifyMatch:
			if !r.opts.quiet {
				fmt.Fprintf(r.errOut, "%s: %s\n", snapshot.Path, r.good.Sprint("OK"))
			}
		case fhash.VerifyMismatch:
			fmt.Fprintf(r.errOut, "%s: %s (expected %s)\n", snapshot.Path, r.bad.Sprint("FAILED"), snapshot.Expected)
		}
	}
}

// jsonEvent is one line of --json output.
type jsonEvent struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

type jsonProgressData struct {
	ID              string  `json:"id"`
	Path            string  `json:"path"`
	Algorithm       string  `json:"algorithm"`
	State           string  `json:"state"`
	BytesProcessed  int64   `json:"bytesProcessed"`
	FileSize        int64   `json:"fileSize"`
	Percentage      float64 `json:"percentage"`
	RateBytesPerSec float64 `json:"rateBytesPerSec"`
	ElapsedMs       int64   `json:"elapsedMs"`
	EtaMs           int64   `json:"etaMs"`
}

type jsonResultData struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Expected  string `json:"expected,omitempty"`
	Verify    string `json:"verify,omitempty"`
	Size      int64  `json:"size"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type jsonErrorData struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type jsonAbortData struct {
	ID             string `json:"id"`
	Path           string `json:"path"`
	BytesProcessed int64  `json:"bytesProcessed"`
}

// jsonReporter writes one JSON object per line for scripting.
type jsonReporter struct {
	encoder *json.Encoder
	now     func() time.Time
}

func newJSONReporter(out io.Writer) *jsonReporter {
	return &jsonReporter{encoder: json.NewEncoder(out), now: time.Now}
}

func (r *jsonReporter) emit(eventType string, data any) {
	event := jsonEvent{
		Type:      eventType,
		Timestamp: r.now().Format(time.RFC3339Nano),
		Data:      data,
	}
	_ = r.encoder.Encode(event)
}

func (r *jsonReporter) Progress(snapshot fhash.Snapshot) {
	r.emit("progress", jsonProgressData{
		ID:              snapshot.ID,
		Path:            snapshot.Path,
		Algorithm:       snapshot.Algorithm.String(),
		State:           snapshot.State.String(),
		BytesProcessed:  snapshot.BytesProcessed,
		FileSize:        snapshot.FileSize,
		Percentage:      snapshot.Percentage,
		RateBytesPerSec: snapshot.Throughput,
		ElapsedMs:       snapshot.Elapsed.Milliseconds(),
		EtaMs:           snapshot.ETA.Milliseconds(),
	})
}

func (r *jsonReporter) Final(snapshot fhash.Snapshot) {
	switch {
	case snapshot.Aborted:
		r.emit("aborted", jsonAbortData{ID: snapshot.ID, Path: snapshot.Path, BytesProcessed: snapshot.BytesProcessed})
	case snapshot.State == fhash.StateError:
		data := jsonErrorData{ID: snapshot.ID, Path: snapshot.Path}
		if snapshot.Error != nil {
			data.Kind = strings.ReplaceAll(snapshot.Error.Kind.String(), " ", "_")
			data.Message = snapshot.Error.Message
		}
		r.emit("error", data)
	case snapshot.State == fhash.StateFinished:
		data := jsonResultData{
			ID:        snapshot.ID,
			Path:      snapshot.Path,
			Algorithm: snapshot.Algorithm.String(),
			Digest:    snapshot.HashResult.String(),
			Size:      snapshot.FileSize,
			ElapsedMs: snapshot.Elapsed.Milliseconds(),
		}
		if snapshot.Verify != fhash.VerifyNone {
			data.Expected = snapshot.Expected.String()
			data.Verify = snapshot.Verify.String()
		}
		r.emit("result", data)
	}
}
