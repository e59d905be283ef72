package process

import (
	"gosplit/process/memory_map"
)

// MemoryReader reads raw bytes out of a process address space
type MemoryReader interface {
	// ReadMemory reads size bytes at addr. A short or failed read is an error.
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

// ModuleFinder locates loaded modules (executables and libraries) by file name
type ModuleFinder interface {
	// GetModuleAddress returns the base address of the named module
	GetModuleAddress(name string) (ProcessMemoryAddress, error)

	// GetModuleSize returns the size of the named module's image
	GetModuleSize(name string) (ProcessMemorySize, error)
}

// Process is the interface that defines operations for interacting with a system process
type Process interface {
	// Open opens a process with the given PID for memory operations
	Open(pid ProcessID) error

	// Close closes the process and releases resources
	Close() error

	// GetPID returns the process ID
	GetPID() ProcessID

	// IsOpen reports whether the process is still alive and readable.
	// Once it returns false every address derived from the process is stale.
	IsOpen() bool

	// UpdateMemoryMap refreshes the memory map for the process
	UpdateMemoryMap() error

	// IsValidAddress checks if the given memory address is valid and readable
	IsValidAddress(addr ProcessMemoryAddress) bool

	// GetMemoryMap returns a copy of the current memory map
	GetMemoryMap() ([]memory_map.MemoryMapItem, error)

	MemoryReader
	ModuleFinder
}

// Attacher opens processes by executable name
type Attacher interface {
	// Attach opens the first process matching name, or returns ErrProcessNotFound
	Attach(name string) (Process, error)
}
