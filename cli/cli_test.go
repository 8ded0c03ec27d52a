package cli

import (
	"testing"

	"github.com/mobile-next/touchcli/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []types.Point
	}{
		{"separate arguments", []string{"10,20", "30,40"}, []types.Point{{X: 10, Y: 20}, {X: 30, Y: 40}}},
		{"single list", []string{"10,20;30,40"}, []types.Point{{X: 10, Y: 20}, {X: 30, Y: 40}}},
		{"mixed", []string{"1,2;3,4", "5,6"}, []types.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := parsePointArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, points)
		})
	}

	_, err := parsePointArgs([]string{"10"})
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	paths := [][]string{
		{"io", "tap"},
		{"io", "swipe"},
		{"io", "smooth-swipe"},
		{"io", "send"},
		{"session", "info"},
		{"session", "reset"},
		{"agent", "install"},
		{"adb", "restart"},
		{"server", "start"},
		{"server", "kill"},
		{"doctor"},
	}

	for _, path := range paths {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, "command %v", path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestIOFlags(t *testing.T) {
	assert.NotNil(t, ioTapCmd.Flags().Lookup("pressure"))
	assert.NotNil(t, ioTapCmd.Flags().Lookup("no-up"))
	assert.Nil(t, ioTapCmd.Flags().Lookup("no-down"), "tap always touches down")
	assert.NotNil(t, ioSwipeCmd.Flags().Lookup("no-down"))
	assert.NotNil(t, ioSmoothSwipeCmd.Flags().Lookup("part"))
	assert.Nil(t, ioSendCmd.Flags().Lookup("pressure"))
}
