package commands

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mobile-next/touchcli/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTapCommand_SendsGesture(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := TapCommand(TapRequest{
		Points: []types.Point{{X: 100, Y: 200}},
	})

	require.Equal(t, "ok", response.Status, response.Error)
	assert.Equal(t, "d 0 100 200 100\nc\nu 0\nc\n", farm.shells["emulator-5554"].LastProcess().Input())
}

func TestTapCommand_MultiTouchWithHold(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := TapCommand(TapRequest{
		DeviceID: "emulator-5554",
		Points:   []types.Point{{X: 10, Y: 20}, {X: 30, Y: 40}},
		Pressure: intPtr(50),
		Duration: 200,
	})

	require.Equal(t, "ok", response.Status, response.Error)
	expected := "d 0 10 20 50\nd 1 30 40 50\nc\nw 200\nc\nu 0\nu 1\nc\n"
	assert.Equal(t, expected, farm.shells["emulator-5554"].LastProcess().Input())
}

func TestInputCommands_Validation(t *testing.T) {
	tests := []struct {
		name      string
		run       func() *CommandResponse
		errSubstr string
	}{
		{
			name:      "tap without points",
			run:       func() *CommandResponse { return TapCommand(TapRequest{}) },
			errSubstr: "at least 1 point",
		},
		{
			name: "tap with negative coordinate",
			run: func() *CommandResponse {
				return TapCommand(TapRequest{Points: []types.Point{{X: -1, Y: 5}}})
			},
			errSubstr: "non-negative",
		},
		{
			name: "tap with negative pressure",
			run: func() *CommandResponse {
				return TapCommand(TapRequest{Points: []types.Point{{X: 1, Y: 5}}, Pressure: intPtr(-3)})
			},
			errSubstr: "pressure must be non-negative",
		},
		{
			name: "swipe with negative duration",
			run: func() *CommandResponse {
				return SwipeCommand(SwipeRequest{Points: []types.Point{{X: 1, Y: 5}}, Duration: -1})
			},
			errSubstr: "duration must be non-negative",
		},
		{
			name: "smooth swipe with one point",
			run: func() *CommandResponse {
				return SmoothSwipeCommand(SmoothSwipeRequest{SwipeRequest: SwipeRequest{Points: []types.Point{{X: 1, Y: 5}}}})
			},
			errSubstr: "at least 2 point",
		},
		{
			name: "smooth swipe with negative part",
			run: func() *CommandResponse {
				return SmoothSwipeCommand(SmoothSwipeRequest{
					SwipeRequest: SwipeRequest{Points: []types.Point{{X: 1, Y: 5}, {X: 2, Y: 6}}},
					Part:         -2,
				})
			},
			errSubstr: "part must be non-negative",
		},
		{
			name:      "send without text",
			run:       func() *CommandResponse { return SendCommand(SendRequest{}) },
			errSubstr: "text is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farm := setupFakeFarm(t, "emulator-5554")

			response := tt.run()

			assert.Equal(t, "error", response.Status)
			assert.Contains(t, response.Error, tt.errSubstr)
			assert.Empty(t, farm.shells["emulator-5554"].Calls(), "validation must happen before the device is touched")
		})
	}
}

func TestSwipeCommand_SendsEachStep(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := SwipeCommand(SwipeRequest{
		Points: []types.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
	})

	require.Equal(t, "ok", response.Status, response.Error)
	process := farm.shells["emulator-5554"].LastProcess()
	assert.Equal(t, []string{"d 0 0 0 100\nc\n", "m 0 10 10 100\nc\nc\n", "u 0\nc\n"}, process.Writes())
}

func TestSmoothSwipeCommand_Interpolates(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := SmoothSwipeCommand(SmoothSwipeRequest{
		SwipeRequest: SwipeRequest{
			Points: []types.Point{{X: 0, Y: 0}, {X: 0, Y: 20}},
			NoDown: true,
			NoUp:   true,
		},
		Part: 2,
	})

	require.Equal(t, "ok", response.Status, response.Error)
	process := farm.shells["emulator-5554"].LastProcess()
	assert.Equal(t, "m 0 0 0 100\nc\nm 0 0 10 100\nc\nm 0 0 20 100\nc\nc\n", process.Input())
}

func TestSendCommand_WritesRawText(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := SendCommand(SendRequest{Text: "d 0 5 5 50\nc"})

	require.Equal(t, "ok", response.Status, response.Error)
	assert.Equal(t, "d 0 5 5 50\nc\n", farm.shells["emulator-5554"].LastProcess().Input())
}

func TestTapCommand_DeviceUnreachable(t *testing.T) {
	setupFakeFarm(t)

	response := TapCommand(TapRequest{
		DeviceID: "emulator-5560",
		Points:   []types.Point{{X: 1, Y: 1}},
	})

	assert.Equal(t, "error", response.Status)
	assert.Contains(t, response.Error, "error finding device")
}

func TestTapCommand_ExplicitZeroPressure(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")

	response := TapCommand(TapRequest{
		Points:   []types.Point{{X: 3, Y: 4}},
		Pressure: intPtr(0),
	})

	require.Equal(t, "ok", response.Status, response.Error)
	assert.Equal(t, "d 0 3 4 0\nc\nu 0\nc\n", farm.shells["emulator-5554"].LastProcess().Input())
}

func TestInputCommands_SameDeviceDoNotInterleave(t *testing.T) {
	farm := setupFakeFarm(t, "emulator-5554")
	configFile := filepath.Join(t.TempDir(), "slow.ini")
	require.NoError(t, os.WriteFile(configFile, []byte("settle_delay = 20ms\nheader_timeout = 100ms\n"), 0o644))
	SetOptions(Options{ConfigFile: configFile})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		response := SwipeCommand(SwipeRequest{Points: []types.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, Duration: 30})
		assert.Equal(t, "ok", response.Status, response.Error)
	}()
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		response := TapCommand(TapRequest{Points: []types.Point{{X: 9, Y: 9}}})
		assert.Equal(t, "ok", response.Status, response.Error)
	}()
	wg.Wait()

	swipe := []string{"d 0 1 1 100\nc\n", "m 0 2 2 100\nw 30\nc\nc\n", "u 0\nc\n"}
	tap := []string{"d 0 9 9 100\nc\nu 0\nc\n"}

	processes := farm.shells["emulator-5554"].Processes()
	require.Len(t, processes, 1)
	writes := processes[0].Writes()
	swipeFirst := append(append([]string(nil), swipe...), tap...)
	tapFirst := append(append([]string(nil), tap...), swipe...)
	assert.True(t, assert.ObjectsAreEqual(swipeFirst, writes) || assert.ObjectsAreEqual(tapFirst, writes), "writes interleaved: %q", writes)
}
