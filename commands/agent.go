package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/utils"
)

// HelperReleaseRepo is the GitHub repository publishing the helper binary.
const HelperReleaseRepo = "MaaAssistantArknights/MaaTouch"

var latestReleaseURL = utils.GetLatestReleaseDownloadURL

// helperAssetName is the release asset holding the helper binary.
const helperAssetName = "maatouch"

// InstallRequest represents the parameters for installing the helper
type InstallRequest struct {
	DeviceID   string `json:"deviceId"`
	FromGitHub bool   `json:"fromGithub,omitempty"`
	Force      bool   `json:"force,omitempty"`
}

// InstallCommand pushes the helper artifact to the device
func InstallCommand(req InstallRequest) *CommandResponse {
	deviceID, err := ResolveDeviceID(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	cfg, err := LoadConfig(deviceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	if req.FromGitHub {
		url, err := latestReleaseURL(HelperReleaseRepo, helperAssetName)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("failed to find helper release: %w", err))
		}
		cfg.LocalArtifactPath = url
	}

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	shell := newShell(deviceID)
	if _, err := shell.GetProp(ctx, "ro.product.model"); err != nil {
		return NewErrorResponse(fmt.Errorf("%w: %s: %v", touch.ErrDeviceUnreachable, deviceID, err))
	}

	installer := touch.NewInstaller(shell, cfg)
	if req.Force {
		err = installer.Push(ctx)
	} else {
		err = installer.EnsureInstalled(ctx)
	}
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to install helper on device %s: %w", deviceID, err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Helper installed at %s on device %s", cfg.RemoteArtifactPath, deviceID),
	})
}

// RestartAdbCommand restarts the local adb server. Open sessions are stopped first.
func RestartAdbCommand() *CommandResponse {
	if err := CloseAll(); err != nil {
		return NewErrorResponse(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	if err := devices.RestartAdb(ctx, adbPath()); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": "adb server restarted",
	})
}
