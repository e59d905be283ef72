// Package timer defines the speedrun timer the autosplitter drives and two implementations:
// a LiveSplit Server client and an in-process timer.
package timer

import (
	"fmt"
	"strings"
	"time"
)

// TimerState is the externally visible phase of a timer
type TimerState int

const (
	// Unknown means the phase could not be queried, for example while the host is unreachable
	Unknown TimerState = iota
	NotRunning
	Running
	Paused
	Ended
)

func (s TimerState) String() string {
	switch s {
	case NotRunning:
		return "NotRunning"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// ParseTimerState parses the phase names LiveSplit reports
func ParseTimerState(s string) TimerState {
	switch strings.TrimSpace(s) {
	case "NotRunning":
		return NotRunning
	case "Running":
		return Running
	case "Paused":
		return Paused
	case "Ended":
		return Ended
	default:
		return Unknown
	}
}

// Timer is the host timer. Commands are fire-and-forget; failures are the host's concern.
type Timer interface {
	State() TimerState
	Start()
	Split()
	Reset()
	PauseGameTime()
	ResumeGameTime()
	SetGameTime(d time.Duration)
}

// FormatDuration renders d as h:mm:ss.fff, the form LiveSplit accepts for setgametime
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Millisecond)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign, h, m, s, ms)
}
