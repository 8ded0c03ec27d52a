package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/devices"
	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/touch/touchtest"
	"github.com/stretchr/testify/require"
)

// setupFakeDevice routes commands for deviceID to a fake shell and installs
// a fresh session registry.
func setupFakeDevice(t *testing.T, deviceID string) *touchtest.FakeShell {
	t.Helper()

	shell := touchtest.NewFakeShell(deviceID)

	registry, err := devices.NewDeviceRegistry(4)
	require.NoError(t, err)
	previous := commands.GetRegistry()
	commands.SetRegistry(registry)

	restoreShell := commands.SetShellFactory(func(id string) touch.Shell {
		if id == deviceID {
			return shell
		}
		offline := touchtest.NewFakeShell(id)
		offline.Unreachable = true
		return offline
	})
	restoreLister := commands.SetDeviceLister(func(ctx context.Context) ([]string, error) {
		return []string{deviceID}, nil
	})

	configFile := filepath.Join(t.TempDir(), "touchcli.ini")
	require.NoError(t, os.WriteFile(configFile, []byte("settle_delay = 1ms\nheader_timeout = 100ms\n"), 0o644))
	commands.SetOptions(commands.Options{ConfigFile: configFile})

	t.Cleanup(func() {
		_ = registry.CleanupAll()
		commands.SetRegistry(previous)
		restoreShell()
		restoreLister()
		commands.SetOptions(commands.Options{})
	})

	return shell
}

func postRPC(t *testing.T, handler http.Handler, body string) JSONRPCResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jsonResp))
	return jsonResp
}

func errorField(t *testing.T, resp JSONRPCResponse, field string) interface{} {
	t.Helper()
	errMap, ok := resp.Error.(map[string]interface{})
	require.True(t, ok, "expected error object, got %T", resp.Error)
	return errMap[field]
}
