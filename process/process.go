// Package process provides interfaces and types for reading the memory of another process
package process

import "errors"

// The interfaces and types are split across:
// - types.go: ProcessID, ProcessInfo
// - memory_types.go: ProcessMemoryAddress, ProcessMemorySize, AOB
// - process_interface.go: Process, Attacher, MemoryReader, ModuleFinder
// - read.go: typed little-endian reads over a MemoryReader
// - path.go: pointer path walking

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrProcessNotFound is returned by an Attacher when no process matches the requested name.
	ErrProcessNotFound = errors.New("process not found")

	// ErrModuleNotFound is returned when a module is not loaded in the process.
	ErrModuleNotFound = errors.New("module not found")

	ErrInvalidPointer = errors.New("invalid pointer read")
)
