// Package tui is the interactive terminal front end for an fhash
// session. The bubbletea event loop is the session's controller: it
// applies worker events, forwards key presses as pause and abort
// requests, and re-renders on a fixed tick.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drgo/fhash"
)

const (
	defaultTick     = 100 * time.Millisecond
	defaultBarWidth = 48
	maxBarWidth     = 80
	horizontalPad   = 2
)

// progressMsg carries one worker event into the event loop.
type progressMsg struct {
	event fhash.ProgressEvent
}

// workerExitedMsg is delivered when the progress channel closes.
type workerExitedMsg struct{}

// tickMsg triggers a re-render of the metrics.
type tickMsg struct{}

// Model renders one hashing session.
type Model struct {
	session  *fhash.Session
	keys     KeyMap
	theme    Theme
	bar      progress.Model
	help     help.Model
	tick     time.Duration
	snapshot fhash.Snapshot
}

// NewModel builds a model for a started session. A non-positive tick
// uses the default refresh interval.
func NewModel(session *fhash.Session, tick time.Duration) Model {
	if tick <= 0 {
		tick = defaultTick
	}
	theme := DefaultTheme
	bar := progress.New(
		progress.WithSolidFill(theme.BarFilled),
		progress.WithoutPercentage(),
		progress.WithWidth(defaultBarWidth),
	)
	bar.EmptyColor = theme.BarEmpty
	return Model{
		session:  session,
		keys:     DefaultKeyMap,
		theme:    theme,
		bar:      bar,
		help:     help.New(),
		tick:     tick,
		snapshot: session.Snapshot(),
	}
}

// Session returns the session driven by the model.
func (model Model) Session() *fhash.Session {
	return model.session
}

// Snapshot returns the most recently rendered snapshot.
func (model Model) Snapshot() fhash.Snapshot {
	return model.snapshot
}

// Init implements tea.Model. A session that ended before the program
// started (empty input, open failure) renders once and quits.
func (model Model) Init() tea.Cmd {
	if model.snapshot.Done() || model.session.Events() == nil {
		return tea.Quit
	}
	return tea.Batch(listenForEvent(model.session.Events()), scheduleTick(model.tick))
}

// listenForEvent returns a tea.Cmd that blocks until the worker
// publishes an event, then delivers it as a progressMsg.
func listenForEvent(channel <-chan fhash.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-channel
		if !ok {
			return workerExitedMsg{}
		}
		return progressMsg{event: event}
	}
}

func scheduleTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.bar.Width = min(max(message.Width-2*horizontalPad, 10), maxBarWidth)
		return model, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			// Abort blocks until the worker has closed the file.
			model.session.Abort()
			model.snapshot = model.session.Snapshot()
			return model, tea.Quit
		case key.Matches(message, model.keys.Pause):
			model.session.TogglePause()
			model.snapshot = model.session.Snapshot()
		}
		return model, nil

	case progressMsg:
		model.session.Apply(message.event)
		model.snapshot = model.session.Snapshot()
		if model.snapshot.Done() {
			return model, tea.Quit
		}
		return model, listenForEvent(model.session.Events())

	case workerExitedMsg:
		if !model.session.Snapshot().Done() {
			model.session.Apply(fhash.ProgressEvent{
				Kind:    fhash.EventFailed,
				Failure: fhash.FailureRead,
				Message: "worker exited without a result",
			})
		}
		model.snapshot = model.session.Snapshot()
		return model, tea.Quit

	case tickMsg:
		model.snapshot = model.session.Snapshot()
		if model.snapshot.Done() {
			return model, nil
		}
		return model, scheduleTick(model.tick)
	}
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	snapshot := model.snapshot
	faint := lipgloss.NewStyle().Foreground(model.theme.Faint)
	pad := lipgloss.NewStyle().PaddingLeft(horizontalPad)

	var lines []string
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.Title).Render(snapshot.Algorithm.String())
	lines = append(lines, title+" "+snapshot.Path)
	lines = append(lines, model.bar.ViewAs(snapshot.Percentage/100)+fmt.Sprintf(" %5.1f%%", snapshot.Percentage))
	lines = append(lines, faint.Render(strings.Join([]string{
		snapshot.FormattedProgress(),
		snapshot.FormattedThroughput(),
		"ETA " + snapshot.FormattedETA(),
	}, "  •  ")))
	lines = append(lines, model.renderStatus(snapshot))
	if !snapshot.Done() {
		lines = append(lines, "", model.help.View(model.keys))
	}
	return pad.Render(strings.Join(lines, "\n")) + "\n"
}

func (model Model) renderStatus(snapshot fhash.Snapshot) string {
	badge := lipgloss.NewStyle().Bold(true).Foreground(model.theme.StateColor(snapshot))
	switch {
	case snapshot.Aborted:
		return badge.Render("aborted")
	case snapshot.State == fhash.StateFinished:
		digest := lipgloss.NewStyle().Foreground(model.theme.Digest).Render(snapshot.HashResult.String())
		status := badge.Render("finished") + " " + digest
		switch snapshot.Verify {
		case fhash.VerifyMatch:
			status += " " + badge.Render("OK")
		case fhash.VerifyMismatch:
			status += " " + badge.Render("MISMATCH, expected "+snapshot.Expected.String())
		}
		return status
	case snapshot.State == fhash.StateError && snapshot.Error != nil:
		return badge.Render("error") + " " + snapshot.Error.Error()
	default:
		return badge.Render(snapshot.State.String())
	}
}
