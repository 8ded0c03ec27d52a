package touch

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mobile-next/touchcli/utils"
)

// Connection writes protocol text to the helper's stdin. The helper does not
// acknowledge commands, so nothing is read back after the header.
type Connection struct {
	deviceID     string
	capabilities Capabilities
	pid          string

	mu      sync.Mutex
	process Process
}

// NewConnection binds to the process owned by server.
func NewConnection(server *Server) *Connection {
	return &Connection{
		deviceID:     server.DeviceID(),
		capabilities: server.Capabilities(),
		pid:          server.PID(),
		process:      server.processHandle(),
	}
}

// Send writes content, newline terminated, to the helper.
func (c *Connection) Send(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process == nil {
		return ErrConnectionClosed
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if _, err := io.WriteString(c.process.Stdin(), content); err != nil {
		return fmt.Errorf("failed to write to helper on %s: %w", c.deviceID, err)
	}

	return nil
}

// Disconnect closes the pipes. Later calls are no-ops.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.process == nil {
		return
	}

	closePipes(c.process)
	c.process = nil
	utils.Verbose("helper disconnected for %s", c.deviceID)
}

func (c *Connection) Capabilities() Capabilities {
	return c.capabilities
}

func (c *Connection) PID() string {
	return c.pid
}

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process == nil
}
