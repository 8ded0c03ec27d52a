package devices

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/utils"
)

// DefaultMaxSessions bounds how many helper sessions stay open at once.
const DefaultMaxSessions = 16

// DeviceRegistry keeps started helper sessions by device id. Sessions pushed
// out of the cache, removed, or cleaned up are stopped.
type DeviceRegistry struct {
	sessions *lru.Cache[string, *touch.Device]
}

// NewDeviceRegistry creates a new device registry instance
func NewDeviceRegistry(maxSessions int) (*DeviceRegistry, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}

	sessions, err := lru.NewWithEvict(maxSessions, func(deviceID string, device *touch.Device) {
		utils.Verbose("Stopping helper session for %s", deviceID)
		device.Stop()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &DeviceRegistry{sessions: sessions}, nil
}

// Register tracks device, stopping any session it replaces.
func (r *DeviceRegistry) Register(device *touch.Device) {
	if previous, ok := r.sessions.Peek(device.ID()); ok && previous != device {
		r.sessions.Remove(device.ID())
	}
	r.sessions.Add(device.ID(), device)
}

// Get returns the session for deviceID, if one is open.
func (r *DeviceRegistry) Get(deviceID string) (*touch.Device, bool) {
	return r.sessions.Get(deviceID)
}

// Remove stops and forgets the session for deviceID.
func (r *DeviceRegistry) Remove(deviceID string) bool {
	return r.sessions.Remove(deviceID)
}

func (r *DeviceRegistry) Len() int {
	return r.sessions.Len()
}

// CleanupAll gracefully cleans up all registered devices
func (r *DeviceRegistry) CleanupAll() error {
	if r.sessions.Len() == 0 {
		return nil
	}

	utils.Verbose("Stopping %d helper session(s)", r.sessions.Len())
	r.sessions.Purge()
	return nil
}
