package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/touch/touchtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFakeShell(t *testing.T, shell *touchtest.FakeShell) *devices.DeviceRegistry {
	t.Helper()

	registry, err := devices.NewDeviceRegistry(4)
	require.NoError(t, err)
	previous := commands.GetRegistry()
	commands.SetRegistry(registry)

	restoreShell := commands.SetShellFactory(func(string) touch.Shell { return shell })
	restoreLister := commands.SetDeviceLister(func(ctx context.Context) ([]string, error) {
		return []string{shell.ID}, nil
	})

	t.Cleanup(func() {
		_ = registry.CleanupAll()
		commands.SetRegistry(previous)
		restoreShell()
		restoreLister()
		commands.SetOptions(commands.Options{})
		rootCmd.SetArgs(nil)
		configFile = ""
		deviceId = ""
	})

	return registry
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "touchcli.ini")
	require.NoError(t, os.WriteFile(path, []byte("settle_delay = 1ms\nheader_timeout = 100ms\n"), 0o644))
	return path
}

func TestExecute_StopsSessionWhenCommandFails(t *testing.T) {
	shell := touchtest.NewFakeShell("emulator-5554")
	shell.StdinErr = io.ErrClosedPipe
	registry := setupFakeShell(t, shell)
	config := writeTestConfig(t)

	rootCmd.SetArgs([]string{"io", "tap", "1,1", "--device", "emulator-5554", "--config", config})
	err := Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to tap on device emulator-5554")
	assert.Equal(t, 0, registry.Len())
	require.Len(t, shell.Processes(), 1)
	assert.True(t, shell.Processes()[0].Killed())
}

func TestExecute_StopsSessionAfterSuccess(t *testing.T) {
	shell := touchtest.NewFakeShell("emulator-5554")
	registry := setupFakeShell(t, shell)
	config := writeTestConfig(t)

	rootCmd.SetArgs([]string{"io", "tap", "1,1", "--device", "emulator-5554", "--config", config})
	require.NoError(t, Execute())

	assert.Equal(t, 0, registry.Len())
	require.Len(t, shell.Processes(), 1)
	assert.Equal(t, "d 0 1 1 100\nc\nu 0\nc\n", shell.Processes()[0].Input())
	assert.True(t, shell.Processes()[0].Killed())
}
