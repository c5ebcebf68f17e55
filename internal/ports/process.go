package ports

// Process is a started external process.
type Process interface {
	// Pid returns the operating system process id.
	Pid() int

	// Wait blocks until the process exits and returns its exit error.
	Wait() error
}

// ProcessLauncher starts external processes without waiting for them.
type ProcessLauncher interface {
	// LookPath resolves an executable name, like exec.LookPath.
	LookPath(name string) (string, error)

	// Start launches name with args, detached from the caller's process group.
	Start(name string, args ...string) (Process, error)
}
