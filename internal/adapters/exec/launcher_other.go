//go:build !unix

package exec

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return nil
}
