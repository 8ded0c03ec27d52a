package commands

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/utils"
)

// StartTimeout bounds presence check, install and helper startup.
const StartTimeout = 60 * time.Second

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// Options are process wide settings shared by every command.
type Options struct {
	AdbPath       string
	ConfigFile    string
	LocalArtifact string
}

var (
	optionsMu sync.RWMutex
	options   Options

	// startMu serializes session startup so one device is never started twice.
	startMu sync.Mutex

	// deviceRegistry holds the open helper sessions. It is set once at
	// application startup via SetRegistry.
	deviceRegistry *devices.DeviceRegistry

	newShell = func(deviceID string) touch.Shell {
		return devices.NewAndroidDevice(deviceID, adbPath())
	}

	listOnlineSerials = func(ctx context.Context) ([]string, error) {
		return devices.GetOnlineSerials(ctx, adbPath())
	}
)

// SetOptions replaces the shared command options.
func SetOptions(o Options) {
	optionsMu.Lock()
	defer optionsMu.Unlock()
	options = o
}

func currentOptions() Options {
	optionsMu.RLock()
	defer optionsMu.RUnlock()
	return options
}

func adbPath() string {
	if path := currentOptions().AdbPath; path != "" {
		return path
	}
	return getAdbPath()
}

// ShellFactory creates the remote shell used to reach a device.
type ShellFactory func(deviceID string) touch.Shell

// SetShellFactory replaces how device shells are created and returns a
// function restoring the previous factory.
func SetShellFactory(factory ShellFactory) (restore func()) {
	previous := newShell
	newShell = factory
	return func() { newShell = previous }
}

// SetDeviceLister replaces how online devices are discovered and returns a
// function restoring the previous lister.
func SetDeviceLister(lister func(ctx context.Context) ([]string, error)) (restore func()) {
	previous := listOnlineSerials
	listOnlineSerials = lister
	return func() { listOnlineSerials = previous }
}

// SetRegistry sets the global session registry.
// This should be called once at application startup (main.go).
func SetRegistry(registry *devices.DeviceRegistry) {
	deviceRegistry = registry
}

// GetRegistry returns the current session registry.
// Returns nil if SetRegistry has not been called yet.
func GetRegistry() *devices.DeviceRegistry {
	return deviceRegistry
}

// LoadConfig resolves the session configuration for deviceID from the
// config file, if any, and the command line overrides.
func LoadConfig(deviceID string) (touch.Config, error) {
	opts := currentOptions()

	cfg := touch.DefaultConfig(deviceID)
	if opts.ConfigFile != "" {
		loaded, err := touch.LoadConfig(opts.ConfigFile, deviceID)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if opts.LocalArtifact != "" {
		cfg.LocalArtifactPath = opts.LocalArtifact
	}

	return cfg, nil
}

// ResolveDeviceID returns deviceID, or the only online device when it is empty.
func ResolveDeviceID(deviceID string) (string, error) {
	if deviceID != "" {
		return deviceID, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	serials, err := listOnlineSerials(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting devices: %w", err)
	}

	if len(serials) == 0 {
		return "", fmt.Errorf("no online devices found")
	}

	if len(serials) > 1 {
		return "", fmt.Errorf("multiple devices found (%d), please specify --device with one of: [%s]", len(serials), strings.Join(serials, ", "))
	}

	return serials[0], nil
}

// FindDevice returns the open helper session for deviceID, starting one if needed.
func FindDevice(deviceID string) (*touch.Device, error) {
	deviceID, err := ResolveDeviceID(deviceID)
	if err != nil {
		return nil, err
	}

	registry := GetRegistry()
	if registry == nil {
		return nil, fmt.Errorf("device registry is not initialized")
	}

	startMu.Lock()
	defer startMu.Unlock()

	if device, ok := registry.Get(deviceID); ok {
		if device.Heartbeat() {
			return device, nil
		}
		utils.Verbose("helper session for %s is gone, restarting", deviceID)
		registry.Remove(deviceID)
	}

	cfg, err := LoadConfig(deviceID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	device, err := touch.NewDevice(ctx, newShell(deviceID), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start helper on device %s: %w", deviceID, err)
	}

	registry.Register(device)
	return device, nil
}

// CloseAll stops every open helper session.
func CloseAll() error {
	registry := GetRegistry()
	if registry == nil {
		return nil
	}
	return registry.CleanupAll()
}
