package touch

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mobile-next/touchcli/utils"
)

// State is a step in the helper session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInstalling
	StateStarting
	StateAwaitingHandshake
	StateReady
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInstalling:
		return "installing"
	case StateStarting:
		return "starting"
	case StateAwaitingHandshake:
		return "awaiting-handshake"
	case StateReady:
		return "ready"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Server supervises one helper process on one device.
type Server struct {
	id     string
	shell  Shell
	config Config
	model  string

	mu           sync.Mutex
	state        State
	process      Process
	headerLines  []string
	capabilities Capabilities
	pid          string
}

// NewServer checks that the device answers, installs the helper if needed,
// starts it and reads its header. Any failure leaves nothing running.
func NewServer(ctx context.Context, shell Shell, cfg Config) (*Server, error) {
	cfg = cfg.withDefaults()
	s := &Server{
		id:     uuid.NewString(),
		shell:  shell,
		config: cfg,
		state:  StateUninitialized,
	}

	model, err := shell.GetProp(ctx, "ro.product.model")
	if err != nil {
		s.setState(StateStopped)
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnreachable, shell.DeviceID(), err)
	}
	utils.Verbose("device %s (%s) online", shell.DeviceID(), model)
	s.model = model

	s.setState(StateInstalling)
	if err := NewInstaller(shell, cfg).EnsureInstalled(ctx); err != nil {
		s.setState(StateStopped)
		return nil, err
	}

	if err := s.start(); err != nil {
		s.setState(StateStopped)
		return nil, err
	}

	return s, nil
}

func (s *Server) start() error {
	s.setState(StateStarting)

	command := s.config.StartCommand()
	utils.Info("start helper on %s: %s", s.shell.DeviceID(), command)
	process, err := s.shell.Start(command)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProcessLaunch, err)
	}

	s.mu.Lock()
	s.process = process
	s.mu.Unlock()

	s.setState(StateAwaitingHandshake)
	h := readHeader(process.Stdout(), s.config.HeaderMaxLines, s.config.HeaderTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return nil
	}
	s.headerLines = h.lines
	s.capabilities = h.capabilities
	s.pid = h.pid
	s.state = StateReady
	return nil
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return
	}
	s.state = state
}

// Heartbeat reports whether the helper process exists and is still running.
func (s *Server) Heartbeat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.process != nil && !s.process.Exited()
}

// Stop kills the helper and closes its pipes. Safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateStopped
	if s.process == nil {
		return
	}

	if err := s.process.Kill(); err != nil {
		utils.Verbose("failed to kill helper on %s: %v", s.shell.DeviceID(), err)
	}
	closePipes(s.process)
	s.process = nil

	utils.Info("helper stopped for %s", s.shell.DeviceID())
}

func (s *Server) ID() string {
	return s.id
}

func (s *Server) DeviceID() string {
	return s.shell.DeviceID()
}

func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities
}

// PID is the helper's own process id as reported in its header.
func (s *Server) PID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

func (s *Server) HeaderLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headerLines...)
}

func (s *Server) Config() Config {
	return s.config
}

// Model is ro.product.model as read by the presence check.
func (s *Server) Model() string {
	return s.model
}

func (s *Server) processHandle() Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.process
}

// closePipes closes all three streams, logging and ignoring errors.
func closePipes(p Process) {
	for name, c := range map[string]interface{ Close() error }{
		"stdin":  p.Stdin(),
		"stdout": p.Stdout(),
		"stderr": p.Stderr(),
	} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			utils.Verbose("closing helper %s: %v", name, err)
		}
	}
}
