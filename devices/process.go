package devices

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mobile-next/touchcli/utils"
)

// pipedProcess owns the parent ends of three os.Pipe pairs so that
// cmd.Wait never closes streams the helper session still reads or writes.
type pipedProcess struct {
	cmd    *exec.Cmd
	stdin  *os.File
	stdout *os.File
	stderr *os.File
	done   chan struct{}
}

func startPipedProcess(cmd *exec.Cmd) (*pipedProcess, error) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)
		return nil, err
	}

	// the child holds its own copies now
	closeAll(stdinR, stdoutW, stderrW)

	p := &pipedProcess{
		cmd:    cmd,
		stdin:  stdinW,
		stdout: stdoutR,
		stderr: stderrR,
		done:   make(chan struct{}),
	}

	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func (p *pipedProcess) Stdin() io.WriteCloser {
	return p.stdin
}

func (p *pipedProcess) Stdout() io.ReadCloser {
	return p.stdout
}

func (p *pipedProcess) Stderr() io.ReadCloser {
	return p.stderr
}

func (p *pipedProcess) Kill() error {
	if p.Exited() {
		return nil
	}
	return utils.KillProcessGroup(p.cmd.Process)
}

func (p *pipedProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
