// Package touchtest provides in-memory stand-ins for the remote shell and
// the helper process.
package touchtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/mobile-next/touchcli/touch"
)

// FakeProcess is a helper process that prints a header and records stdin.
type FakeProcess struct {
	stdin   *recordingWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderr  io.ReadCloser

	mu     sync.Mutex
	killed bool
}

// NewFakeProcess starts feeding header lines to stdout. Unless eof is set
// stdout then stays open like a live helper would.
func NewFakeProcess(header []string, eof bool) *FakeProcess {
	return newFakeProcess(header, eof, nil)
}

func newFakeProcess(header []string, eof bool, stdinErr error) *FakeProcess {
	r, w := io.Pipe()
	p := &FakeProcess{
		stdin:   &recordingWriter{err: stdinErr},
		stdoutR: r,
		stdoutW: w,
		stderr:  io.NopCloser(strings.NewReader("")),
	}

	go func() {
		for _, line := range header {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return
			}
		}
		if eof {
			_ = w.Close()
		}
	}()

	return p
}

func (p *FakeProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *FakeProcess) Stdout() io.ReadCloser { return p.stdoutR }
func (p *FakeProcess) Stderr() io.ReadCloser { return p.stderr }

func (p *FakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed = true
	_ = p.stdoutW.Close()
	return nil
}

func (p *FakeProcess) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *FakeProcess) Killed() bool {
	return p.Exited()
}

// Input returns everything written to stdin so far.
func (p *FakeProcess) Input() string {
	return p.stdin.String()
}

// Writes returns each stdin write separately.
func (p *FakeProcess) Writes() []string {
	return p.stdin.Writes()
}

func (p *FakeProcess) StdinClosed() bool {
	return p.stdin.Closed()
}

type recordingWriter struct {
	err    error
	mu     sync.Mutex
	buf    bytes.Buffer
	writes []string
	closed bool
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, os.ErrClosed
	}
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, string(b))
	return w.buf.Write(b)
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true
	return nil
}

func (w *recordingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func (w *recordingWriter) Writes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.writes...)
}

func (w *recordingWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// FakeShell is a scriptable remote shell for one device.
type FakeShell struct {
	ID          string
	Model       string
	Unreachable bool
	RemoteFiles []string
	ListErr     error
	PushErr     error
	ChmodErr    error
	StartErr    error

	// Header is printed by every started process.
	Header []string
	// HeaderEOF closes stdout after the header.
	HeaderEOF bool
	// StdinErr fails every write to a started process's stdin.
	StdinErr error

	mu        sync.Mutex
	calls     []string
	processes []*FakeProcess
}

// NewFakeShell returns a reachable device that already has the helper
// installed and prints a complete header.
func NewFakeShell(id string) *FakeShell {
	return &FakeShell{
		ID:          id,
		Model:       "Pixel 7",
		RemoteFiles: []string{path.Base(touch.DefaultRemoteArtifactPath)},
		Header:      []string{"v 1", "^ 10 1080 2400 255", "$ 1234"},
	}
}

func (s *FakeShell) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

// Calls returns the remote invocations in order.
func (s *FakeShell) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Processes returns every process started so far.
func (s *FakeShell) Processes() []*FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FakeProcess(nil), s.processes...)
}

// LastProcess returns the most recently started process, or nil.
func (s *FakeShell) LastProcess() *FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.processes) == 0 {
		return nil
	}
	return s.processes[len(s.processes)-1]
}

func (s *FakeShell) DeviceID() string {
	return s.ID
}

func (s *FakeShell) GetProp(ctx context.Context, name string) (string, error) {
	s.record("getprop " + name)
	if s.Unreachable {
		return "", errors.New("device offline")
	}
	return s.Model, nil
}

func (s *FakeShell) ListDir(ctx context.Context, dir string) ([]string, error) {
	s.record("ls " + dir)
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.RemoteFiles...), nil
}

func (s *FakeShell) Push(ctx context.Context, localPath, remotePath string) error {
	s.record(fmt.Sprintf("push %s %s", localPath, remotePath))
	if s.PushErr != nil {
		return s.PushErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RemoteFiles = append(s.RemoteFiles, path.Base(remotePath))
	return nil
}

func (s *FakeShell) Chmod(ctx context.Context, mode, remotePath string) error {
	s.record(fmt.Sprintf("chmod %s %s", mode, remotePath))
	return s.ChmodErr
}

func (s *FakeShell) Start(command string) (touch.Process, error) {
	s.record("start " + command)
	if s.StartErr != nil {
		return nil, s.StartErr
	}

	p := newFakeProcess(s.Header, s.HeaderEOF, s.StdinErr)
	s.mu.Lock()
	s.processes = append(s.processes, p)
	s.mu.Unlock()
	return p, nil
}
