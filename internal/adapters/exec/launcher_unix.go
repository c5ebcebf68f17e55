//go:build unix

package exec

import "syscall"

// detachedAttr puts the child in a new process group so terminal signals
// sent to the host do not reach it.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
