//go:build unix

package utils

import (
	"os"
	"os/exec"
	"syscall"
)

// ConfigureDetachedProcAttr puts the command in its own process group so a
// signal to the CLI does not reach the adb child directly.
func ConfigureDetachedProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

// KillProcessGroup kills the group led by p, falling back to p alone when
// it does not lead a group.
func KillProcessGroup(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return p.Kill()
}
