//go:build windows

package utils

import (
	"os"
	"os/exec"
)

// ConfigureDetachedProcAttr is a no-op on Windows.
func ConfigureDetachedProcAttr(cmd *exec.Cmd) {
}

func KillProcessGroup(p *os.Process) error {
	return p.Kill()
}
