package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/drgo/fhash"
)

// Theme is the palette of the hashing screen, in ANSI 256-color codes.
type Theme struct {
	Title     lipgloss.Color
	Faint     lipgloss.Color
	Hashing   lipgloss.Color
	Paused    lipgloss.Color
	Finished  lipgloss.Color
	Error     lipgloss.Color
	Digest    lipgloss.Color
	BarFilled string
	BarEmpty  string
}

// DefaultTheme works on both dark and light backgrounds.
var DefaultTheme = Theme{
	Title:     lipgloss.Color("39"),
	Faint:     lipgloss.Color("245"),
	Hashing:   lipgloss.Color("39"),
	Paused:    lipgloss.Color("214"),
	Finished:  lipgloss.Color("42"),
	Error:     lipgloss.Color("196"),
	Digest:    lipgloss.Color("255"),
	BarFilled: "#5A56E0",
	BarEmpty:  "#3C3C3C",
}

// StateColor returns the badge color for a snapshot.
func (theme Theme) StateColor(snapshot fhash.Snapshot) lipgloss.Color {
	switch {
	case snapshot.Aborted:
		return theme.Faint
	case snapshot.State == fhash.StatePaused:
		return theme.Paused
	case snapshot.State == fhash.StateFinished:
		if snapshot.Verify == fhash.VerifyMismatch {
			return theme.Error
		}
		return theme.Finished
	case snapshot.State == fhash.StateError:
		return theme.Error
	default:
		return theme.Hashing
	}
}
