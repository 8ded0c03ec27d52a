package devices

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mobile-next/touchcli/utils"
)

// ShutdownHook collects cleanup steps run when the process is asked to
// exit. Steps run last-registered first, like deferred calls.
type ShutdownHook struct {
	mu    sync.Mutex
	steps []cleanupStep
	done  bool
}

type cleanupStep struct {
	name string
	fn   func() error
}

func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a named cleanup step. Steps registered after Shutdown has
// run are executed immediately.
func (s *ShutdownHook) Register(name string, fn func() error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		utils.Verbose("Shutdown already ran, executing %s now", name)
		if err := fn(); err != nil {
			utils.Warn("cleanup %s failed: %v", name, err)
		}
		return
	}
	s.steps = append(s.steps, cleanupStep{name: name, fn: fn})
	s.mu.Unlock()
	utils.Verbose("Registered shutdown hook: %s", name)
}

// RegisterRegistry stops every open helper session on shutdown.
func (s *ShutdownHook) RegisterRegistry(registry *DeviceRegistry) {
	s.Register("helper-sessions", registry.CleanupAll)
}

// Shutdown runs every step once, continuing past failures, and joins the
// errors.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	steps := s.steps
	s.steps = nil
	s.done = true
	s.mu.Unlock()

	if len(steps) == 0 {
		return nil
	}

	utils.Verbose("Executing %d shutdown hook(s)", len(steps))
	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		utils.Verbose("Running shutdown hook: %s", step.name)
		if err := step.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	return errors.Join(errs...)
}

func (s *ShutdownHook) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}
