//go:build !windows

package executor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup kills every process in the group led by the child.
func killProcessGroup(c *exec.Cmd) {
	if c.Process == nil {
		return
	}
	_ = unix.Kill(-c.Process.Pid, unix.SIGKILL)
}
