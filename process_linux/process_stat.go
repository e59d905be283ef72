//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gosplit/process"
)

// procStat is the part of /proc/<pid>/stat used for liveness checks
type procStat struct {
	State     string
	StartTime uint64 // clock ticks after boot
}

func readStat(pid process.ProcessID) (procStat, error) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(int(pid)), "stat"))
	if err != nil {
		return procStat{}, err
	}
	return parseStat(data)
}

// parseStat parses "pid (comm) state ppid ... starttime ...".
// comm may itself contain spaces and parentheses, so fields start after the last ')'.
func parseStat(data []byte) (procStat, error) {
	i := bytes.LastIndexByte(data, ')')
	if i < 0 {
		return procStat{}, fmt.Errorf("malformed stat: no comm")
	}

	// fields[0] is field 3 (state); starttime is field 22
	fields := bytes.Fields(data[i+1:])
	if len(fields) < 20 {
		return procStat{}, fmt.Errorf("malformed stat: %d fields", len(fields))
	}

	start, err := strconv.ParseUint(string(fields[19]), 10, 64)
	if err != nil {
		return procStat{}, fmt.Errorf("malformed stat starttime: %w", err)
	}

	return procStat{State: string(fields[0]), StartTime: start}, nil
}
