package exec

import (
	osexec "os/exec"

	"github.com/bft-labs/eventship/internal/ports"
)

// OSLauncher implements ports.ProcessLauncher with os/exec.
type OSLauncher struct{}

// NewOSLauncher creates a launcher for real processes.
func NewOSLauncher() *OSLauncher {
	return &OSLauncher{}
}

// LookPath resolves name on PATH.
func (OSLauncher) LookPath(name string) (string, error) {
	return osexec.LookPath(name)
}

// Start launches name in its own process group with no stdio attached.
func (OSLauncher) Start(name string, args ...string) (ports.Process, error) {
	cmd := osexec.Command(name, args...)
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &osProcess{cmd: cmd}, nil
}

type osProcess struct {
	cmd *osexec.Cmd
}

func (p *osProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Wait() error {
	return p.cmd.Wait()
}
