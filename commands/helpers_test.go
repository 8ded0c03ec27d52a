package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/touch/touchtest"
	"github.com/stretchr/testify/require"
)

type fakeFarm struct {
	mu      sync.Mutex
	shells  map[string]*touchtest.FakeShell
	online  []string
	listErr error
}

func (f *fakeFarm) shell(deviceID string) *touchtest.FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	shell, ok := f.shells[deviceID]
	if !ok {
		shell = touchtest.NewFakeShell(deviceID)
		shell.Unreachable = true
		f.shells[deviceID] = shell
	}
	return shell
}

// setupFakeFarm routes every command to fake shells for ids and installs a
// fresh registry plus a config file with short delays.
func setupFakeFarm(t *testing.T, ids ...string) *fakeFarm {
	t.Helper()

	farm := &fakeFarm{shells: map[string]*touchtest.FakeShell{}, online: ids}
	for _, id := range ids {
		farm.shells[id] = touchtest.NewFakeShell(id)
	}

	registry, err := devices.NewDeviceRegistry(4)
	require.NoError(t, err)
	previousRegistry := GetRegistry()
	SetRegistry(registry)

	restoreShell := SetShellFactory(func(deviceID string) touch.Shell {
		return farm.shell(deviceID)
	})
	restoreLister := SetDeviceLister(func(ctx context.Context) ([]string, error) {
		if farm.listErr != nil {
			return nil, farm.listErr
		}
		return farm.online, nil
	})

	configFile := filepath.Join(t.TempDir(), "touchcli.ini")
	require.NoError(t, os.WriteFile(configFile, []byte("settle_delay = 1ms\nheader_timeout = 100ms\n"), 0o644))
	SetOptions(Options{ConfigFile: configFile})

	t.Cleanup(func() {
		_ = registry.CleanupAll()
		SetRegistry(previousRegistry)
		restoreShell()
		restoreLister()
		SetOptions(Options{})
	})

	return farm
}

var errListFailed = errors.New("adb not found")

func intPtr(v int) *int {
	return &v
}
