//go:build linux

package process_linux

import (
	"fmt"
	"sync"
	"time"

	"gosplit/process"
	"gosplit/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// missRefreshInterval bounds how often a read of an unmapped address re-reads the maps
const missRefreshInterval = 250 * time.Millisecond

// LinuxProcess implements the process.Process interface for Linux systems
type LinuxProcess struct {
	pid         process.ProcessID
	startTime   uint64 // from /proc/<pid>/stat, detects PID reuse
	log         *logger.Logger
	mm          []memory_map.MemoryMapItem
	lastRefresh time.Time
	mu          sync.Mutex
}

var _ process.Process = (*LinuxProcess)(nil)

// New creates a new LinuxProcess instance
func New() process.Process {
	return &LinuxProcess{
		log: logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open")),
	}
}

// NewWithPID creates a new LinuxProcess instance and opens it with the given PID
func NewWithPID(pid process.ProcessID) (process.Process, error) {
	p := &LinuxProcess{}
	err := p.Open(pid)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *LinuxProcess) Open(pid process.ProcessID) error {
	stat, err := readStat(pid)
	if err != nil {
		return fmt.Errorf("process with PID %d does not exist: %w", pid, err)
	}

	p.mu.Lock()
	p.pid = pid
	p.startTime = stat.StartTime
	p.log = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, fmt.Sprintf("process-%d", pid)))
	p.mu.Unlock()

	if err := p.UpdateMemoryMap(); err != nil {
		return fmt.Errorf("failed to initialize memory map: %w", err)
	}

	p.log.Infoln("Process opened")

	return nil
}

func (p *LinuxProcess) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil
	}

	p.pid = 0
	p.startTime = 0
	p.mm = nil

	p.log.Infoln("Process closed")
	p.log = logger.NewLogger(coloransi.Color(coloransi.Red, coloransi.ColorOrange, "process-not-open"))

	return nil
}

// GetPID returns the process ID
func (p *LinuxProcess) GetPID() process.ProcessID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pid
}

// IsOpen reports whether the opened PID still names the same live process
func (p *LinuxProcess) IsOpen() bool {
	p.mu.Lock()
	pid, startTime := p.pid, p.startTime
	p.mu.Unlock()

	if pid == 0 {
		return false
	}

	stat, err := readStat(pid)
	if err != nil {
		return false
	}
	if stat.State == "Z" || stat.State == "X" {
		return false
	}
	return stat.StartTime == startTime
}

func (p *LinuxProcess) UpdateMemoryMap() error {
	p.mu.Lock()
	pid := p.pid
	p.mu.Unlock()

	if pid == 0 {
		return process.ErrProcessNotOpen
	}

	// Read the map without holding the lock
	mm, err := memory_map.ReadProcMaps(int(pid))
	if err != nil {
		return fmt.Errorf("failed to read memory map: %w", err)
	}

	p.mu.Lock()
	p.mm = mm
	p.lastRefresh = time.Now()
	p.mu.Unlock()
	return nil
}

func (p *LinuxProcess) IsValidAddress(addr process.ProcessMemoryAddress) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.isValidAddressInternal(addr)
}

// Internal helper function that assumes the mutex is already locked
func (p *LinuxProcess) isValidAddressInternal(addr process.ProcessMemoryAddress) bool {
	if addr <= 0x10000 {
		return false
	}

	return memory_map.IsReadableAddress(uint64(addr), p.mm)
}

func (p *LinuxProcess) GetMemoryMap() ([]memory_map.MemoryMapItem, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// Make a copy of the memory map to prevent external modification
	result := make([]memory_map.MemoryMapItem, len(p.mm))
	copy(result, p.mm)

	return result, nil
}

// GetModuleAddress returns the lowest address mapped from the named file
func (p *LinuxProcess) GetModuleAddress(name string) (process.ProcessMemoryAddress, error) {
	base, _, err := p.moduleRange(name)
	return base, err
}

// GetModuleSize returns the span of all mappings of the named file
func (p *LinuxProcess) GetModuleSize(name string) (process.ProcessMemorySize, error) {
	_, size, err := p.moduleRange(name)
	return size, err
}

func (p *LinuxProcess) moduleRange(name string) (process.ProcessMemoryAddress, process.ProcessMemorySize, error) {
	// Modules may have been mapped since open
	if err := p.UpdateMemoryMap(); err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	base, size, ok := memory_map.ModuleRange(name, p.mm)
	p.mu.Unlock()

	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", name, process.ErrModuleNotFound)
	}
	return process.ProcessMemoryAddress(base), process.ProcessMemorySize(size), nil
}
