package devices

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/utils"
)

// AdbPathEnv overrides the adb executable when no explicit path is given.
const AdbPathEnv = "ADB_PATH"

// AndroidDevice is the adb backed remote shell for one device.
type AndroidDevice struct {
	id      string
	adbPath string
}

// NewAndroidDevice returns a shell for id. An empty adbPath falls back to
// $ADB_PATH and then to "adb" on PATH.
func NewAndroidDevice(id, adbPath string) *AndroidDevice {
	return &AndroidDevice{
		id:      id,
		adbPath: resolveAdbPath(adbPath),
	}
}

func resolveAdbPath(adbPath string) string {
	if adbPath != "" {
		return adbPath
	}
	if envPath := os.Getenv(AdbPathEnv); envPath != "" {
		return envPath
	}
	return "adb"
}

func (d *AndroidDevice) DeviceID() string {
	return d.id
}

// DeviceType reports "emulator" for emulator serials and "real" otherwise.
func DeviceType(deviceID string) string {
	if strings.HasPrefix(deviceID, "emulator-") {
		return "emulator"
	}
	return "real"
}

func (d *AndroidDevice) adbArgs(args ...string) []string {
	return append([]string{"-s", d.id}, args...)
}

func (d *AndroidDevice) runAdbCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.adbPath, d.adbArgs(args...)...)
	utils.Verbose("running: %s %s", d.adbPath, strings.Join(cmd.Args[1:], " "))
	return cmd.CombinedOutput()
}

// GetProp reads a system property. It doubles as the presence check.
func (d *AndroidDevice) GetProp(ctx context.Context, name string) (string, error) {
	output, err := d.runAdbCommand(ctx, "shell", "getprop", name)
	if err != nil {
		return "", fmt.Errorf("getprop %s failed: %v\nOutput: %s", name, err, string(output))
	}

	return strings.TrimSpace(strings.NewReplacer("\r", "", "\n", "").Replace(string(output))), nil
}

func (d *AndroidDevice) ListDir(ctx context.Context, dir string) ([]string, error) {
	output, err := d.runAdbCommand(ctx, "shell", "ls", dir)
	if err != nil {
		return nil, fmt.Errorf("ls %s failed: %v\nOutput: %s", dir, err, string(output))
	}

	return strings.Fields(string(output)), nil
}

func (d *AndroidDevice) Push(ctx context.Context, localPath, remotePath string) error {
	output, err := d.runAdbCommand(ctx, "push", localPath, remotePath)
	if err != nil {
		return fmt.Errorf("push %s failed: %v\nOutput: %s", localPath, err, string(output))
	}

	return nil
}

func (d *AndroidDevice) Chmod(ctx context.Context, mode, remotePath string) error {
	output, err := d.runAdbCommand(ctx, "shell", "chmod", mode, remotePath)
	if err != nil {
		return fmt.Errorf("chmod %s failed: %v\nOutput: %s", remotePath, err, string(output))
	}

	return nil
}

// Start launches command through "adb shell" with piped stdio.
func (d *AndroidDevice) Start(command string) (touch.Process, error) {
	cmd := exec.Command(d.adbPath, d.adbArgs("shell", command)...)
	utils.ConfigureDetachedProcAttr(cmd)

	process, err := startPipedProcess(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start adb shell on %s: %w", d.id, err)
	}

	return process, nil
}

func parseAdbDevicesOutput(output string) []string {
	var serials []string

	lines := strings.Split(output, "\n")
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		parts := strings.Fields(line)
		if len(parts) == 2 && parts[1] == "device" {
			serials = append(serials, parts[0])
		}
	}

	return serials
}

// GetOnlineSerials lists the serials of devices adb reports as "device".
func GetOnlineSerials(ctx context.Context, adbPath string) ([]string, error) {
	command := exec.CommandContext(ctx, resolveAdbPath(adbPath), "devices")
	output, err := command.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to run 'adb devices': %v", err)
	}

	return parseAdbDevicesOutput(string(output)), nil
}

// RestartAdb kills and restarts the local adb server.
func RestartAdb(ctx context.Context, adbPath string) error {
	adb := resolveAdbPath(adbPath)
	for _, arg := range []string{"kill-server", "start-server"} {
		output, err := exec.CommandContext(ctx, adb, arg).CombinedOutput()
		if err != nil {
			return fmt.Errorf("adb %s failed: %v\nOutput: %s", arg, err, string(output))
		}
	}

	return nil
}
