//go:build linux

package process_linux

import (
	"fmt"

	"gosplit/process"
)

// LinuxAttacher implements process.Attacher over /proc
type LinuxAttacher struct {
	Finder *LinuxProcessFinder
}

var _ process.Attacher = (*LinuxAttacher)(nil)

// NewAttacher creates a new LinuxAttacher
func NewAttacher() *LinuxAttacher {
	return &LinuxAttacher{
		Finder: NewProcessFinder(),
	}
}

// Attach opens the lowest PID whose name matches
func (h *LinuxAttacher) Attach(name string) (process.Process, error) {
	processes, err := h.Finder.FindProcessByName(name)
	if err != nil {
		return nil, err
	}

	if len(processes) == 0 {
		return nil, fmt.Errorf("no process named '%s': %w", name, process.ErrProcessNotFound)
	}

	return NewWithPID(processes[0].PID)
}
