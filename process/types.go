package process

// ProcessID represents a unique identifier for a process
type ProcessID int

// ProcessInfo contains basic information about a process
type ProcessInfo struct {
	PID     ProcessID // Process ID
	Name    string    // Process name from /proc/[pid]/comm or the exe file name
	Exe     string    // Path to the executable
	Cmdline []string  // Command line arguments
}
