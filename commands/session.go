package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
)

// SessionRequest identifies the helper session to act on
type SessionRequest struct {
	DeviceID string `json:"deviceId"`
}

// SessionInfo describes an open helper session
type SessionInfo struct {
	DeviceID     string             `json:"deviceId"`
	DeviceType   string             `json:"deviceType"`
	Model        string             `json:"model,omitempty"`
	SessionID    string             `json:"sessionId"`
	State        string             `json:"state"`
	Alive        bool               `json:"alive"`
	PID          string             `json:"pid,omitempty"`
	Capabilities touch.Capabilities `json:"capabilities"`
	Header       []string           `json:"header,omitempty"`
	Artifact     string             `json:"artifact"`
	MainClass    string             `json:"mainClass"`
}

func newSessionInfo(device *touch.Device) SessionInfo {
	server := device.Server()
	cfg := server.Config()
	return SessionInfo{
		DeviceID:     device.ID(),
		DeviceType:   devices.DeviceType(device.ID()),
		Model:        server.Model(),
		SessionID:    server.ID(),
		State:        server.State().String(),
		Alive:        server.Heartbeat(),
		PID:          server.PID(),
		Capabilities: device.Capabilities(),
		Header:       server.HeaderLines(),
		Artifact:     cfg.RemoteArtifactPath,
		MainClass:    cfg.MainClass,
	}
}

// InfoCommand starts the helper if needed and reports its capabilities
func InfoCommand(req SessionRequest) *CommandResponse {
	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	return NewSuccessResponse(newSessionInfo(targetDevice))
}

// ResetCommand restarts the helper session on the specified device
func ResetCommand(req SessionRequest) *CommandResponse {
	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	if err := targetDevice.Reset(ctx); err != nil {
		GetRegistry().Remove(targetDevice.ID())
		return NewErrorResponse(fmt.Errorf("failed to restart helper on device %s: %w", targetDevice.ID(), err))
	}

	return NewSuccessResponse(newSessionInfo(targetDevice))
}

// StopCommand stops the helper session on the specified device, if any
func StopCommand(req SessionRequest) *CommandResponse {
	deviceID, err := ResolveDeviceID(req.DeviceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	registry := GetRegistry()
	if registry == nil || !registry.Remove(deviceID) {
		return NewErrorResponse(fmt.Errorf("no helper session open for device %s", deviceID))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Stopped helper session on device %s", deviceID),
	})
}
