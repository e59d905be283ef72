//go:build windows

package process_windows

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unsafe"

	"gosplit/process"

	"golang.org/x/sys/windows"
)

// WindowsAttacher implements process.Attacher with a Toolhelp32 process snapshot
type WindowsAttacher struct{}

var _ process.Attacher = (*WindowsAttacher)(nil)

// NewAttacher creates a new WindowsAttacher
func NewAttacher() *WindowsAttacher {
	return &WindowsAttacher{}
}

// Attach opens the lowest PID whose executable name matches, ignoring case
func (a *WindowsAttacher) Attach(name string) (process.Process, error) {
	pids, err := FindProcessByName(name)
	if err != nil {
		return nil, err
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("no process named '%s': %w", name, process.ErrProcessNotFound)
	}
	return NewWithPID(pids[0])
}

// FindProcessByName lists the PIDs of processes whose executable is name
func FindProcessByName(name string) ([]process.ProcessID, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot failed: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var pids []process.ProcessID
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.ExeFile[:]), name) {
			pids = append(pids, process.ProcessID(entry.ProcessID))
		}
	}
	if !errors.Is(err, windows.ERROR_NO_MORE_FILES) {
		return nil, fmt.Errorf("Process32Next failed: %w", err)
	}

	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids, nil
}

func (p *WindowsProcess) GetModuleAddress(name string) (process.ProcessMemoryAddress, error) {
	entry, err := p.findModule(name)
	if err != nil {
		return 0, err
	}
	return process.ProcessMemoryAddress(entry.ModBaseAddr), nil
}

func (p *WindowsProcess) GetModuleSize(name string) (process.ProcessMemorySize, error) {
	entry, err := p.findModule(name)
	if err != nil {
		return 0, err
	}
	return process.ProcessMemorySize(entry.ModBaseSize), nil
}

func (p *WindowsProcess) findModule(name string) (*windows.ModuleEntry32, error) {
	pid := p.GetPID()
	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("CreateToolhelp32Snapshot for %d failed: %w", pid, err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Module32First(snapshot, &entry); err == nil; err = windows.Module32Next(snapshot, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.Module[:]), name) {
			found := entry
			return &found, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
}
