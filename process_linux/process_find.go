//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gosplit/process"
	"gosplit/process/memory_map"
)

// commLen is the longest name the kernel keeps in /proc/<pid>/comm
const commLen = 15

// LinuxProcessFinder finds processes by reading /proc
type LinuxProcessFinder struct {
	root string
}

// NewProcessFinder creates a new LinuxProcessFinder
func NewProcessFinder() *LinuxProcessFinder {
	return &LinuxProcessFinder{root: "/proc"}
}

// FindProcessByName returns every process matching name, lowest PID first.
// Wine-hosted Windows programs match through the Windows path in argv[0].
func (f *LinuxProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty name")
	}

	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.root, err)
	}

	selfPID := os.Getpid()
	var results []process.ProcessInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || pid == selfPID {
			continue
		}

		info, err := f.getProcessInfo(process.ProcessID(pid))
		if err != nil {
			// Process may have terminated while we were reading
			continue
		}

		if MatchesName(info, name) {
			results = append(results, *info)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PID < results[j].PID
	})

	return results, nil
}

// MatchesName reports whether a process is the executable called name
func MatchesName(info *process.ProcessInfo, name string) bool {
	if info.Name == name {
		return true
	}
	if len(name) > commLen && info.Name == name[:commLen] {
		return true
	}
	if info.Exe != "" && strings.EqualFold(filepath.Base(info.Exe), name) {
		return true
	}
	if len(info.Cmdline) > 0 && strings.EqualFold(memory_map.BaseName(info.Cmdline[0]), name) {
		return true
	}
	return false
}

func (f *LinuxProcessFinder) getProcessInfo(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := filepath.Join(f.root, strconv.Itoa(int(pid)))

	nameBytes, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process name: %w", err)
	}
	name := strings.TrimSpace(string(nameBytes))

	// Kernel threads and other users' processes may hide exe
	exe, _ := os.Readlink(filepath.Join(procPath, "exe"))

	cmdlineBytes, err := os.ReadFile(filepath.Join(procPath, "cmdline"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process cmdline: %w", err)
	}

	return &process.ProcessInfo{
		PID:     pid,
		Name:    name,
		Exe:     exe,
		Cmdline: splitCmdline(cmdlineBytes),
	}, nil
}

func splitCmdline(b []byte) []string {
	b = bytes.TrimRight(b, "\x00")
	if len(b) == 0 {
		return nil
	}
	var cmdline []string
	for _, arg := range bytes.Split(b, []byte{0}) {
		cmdline = append(cmdline, string(arg))
	}
	return cmdline
}
