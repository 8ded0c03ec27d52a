package commands

import (
	"fmt"

	"github.com/mobile-next/touchcli/touch"
	"github.com/mobile-next/touchcli/types"
)

// TapRequest represents the parameters for a tap command
type TapRequest struct {
	DeviceID string        `json:"deviceId"`
	Points   []types.Point `json:"points"`
	Pressure *int          `json:"pressure,omitempty"`
	Duration int           `json:"duration,omitempty"`
	NoUp     bool          `json:"noUp,omitempty"`
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	DeviceID string        `json:"deviceId"`
	Points   []types.Point `json:"points"`
	Pressure *int          `json:"pressure,omitempty"`
	Duration int           `json:"duration,omitempty"`
	NoDown   bool          `json:"noDown,omitempty"`
	NoUp     bool          `json:"noUp,omitempty"`
}

// SmoothSwipeRequest represents the parameters for a smoothed swipe command
type SmoothSwipeRequest struct {
	SwipeRequest
	Part int `json:"part,omitempty"`
}

// SendRequest carries raw protocol text for the helper
type SendRequest struct {
	DeviceID string `json:"deviceId"`
	Text     string `json:"text"`
}

func validatePoints(points []types.Point, min int) error {
	if len(points) < min {
		return fmt.Errorf("at least %d point(s) required, got %d", min, len(points))
	}

	for i, p := range points {
		if p.X < 0 || p.Y < 0 {
			return fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d at index %d", p.X, p.Y, i)
		}
	}

	return nil
}

func validateGestureParams(pressure *int, duration int) error {
	if pressure != nil && *pressure < 0 {
		return fmt.Errorf("pressure must be non-negative, got %d", *pressure)
	}
	if duration < 0 {
		return fmt.Errorf("duration must be non-negative, got %d", duration)
	}
	return nil
}

// TapCommand taps all points at once on the specified device
func TapCommand(req TapRequest) *CommandResponse {
	if err := validatePoints(req.Points, 1); err != nil {
		return NewErrorResponse(err)
	}
	if err := validateGestureParams(req.Pressure, req.Duration); err != nil {
		return NewErrorResponse(err)
	}

	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	err = targetDevice.Tap(req.Points, touch.TapOptions{
		Pressure: req.Pressure,
		Duration: req.Duration,
		NoUp:     req.NoUp,
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to tap on device %s: %w", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Tapped %d point(s) on device %s", len(req.Points), targetDevice.ID()),
	})
}

// SwipeCommand drags a single contact through the points on the specified device
func SwipeCommand(req SwipeRequest) *CommandResponse {
	if err := validatePoints(req.Points, 1); err != nil {
		return NewErrorResponse(err)
	}
	if err := validateGestureParams(req.Pressure, req.Duration); err != nil {
		return NewErrorResponse(err)
	}

	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	err = targetDevice.Swipe(req.Points, swipeOptions(req))
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe on device %s: %w", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Swiped through %d point(s) on device %s", len(req.Points), targetDevice.ID()),
	})
}

// SmoothSwipeCommand swipes every segment in small interpolated steps
func SmoothSwipeCommand(req SmoothSwipeRequest) *CommandResponse {
	if err := validatePoints(req.Points, 2); err != nil {
		return NewErrorResponse(err)
	}
	if err := validateGestureParams(req.Pressure, req.Duration); err != nil {
		return NewErrorResponse(err)
	}
	if req.Part < 0 {
		return NewErrorResponse(fmt.Errorf("part must be non-negative, got %d", req.Part))
	}

	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	err = targetDevice.SmoothSwipe(req.Points, touch.SmoothSwipeOptions{
		SwipeOptions: swipeOptions(req.SwipeRequest),
		Part:         req.Part,
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to smooth swipe on device %s: %w", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Smooth swiped through %d point(s) on device %s", len(req.Points), targetDevice.ID()),
	})
}

// SendCommand writes raw protocol text to the helper on the specified device
func SendCommand(req SendRequest) *CommandResponse {
	if req.Text == "" {
		return NewErrorResponse(fmt.Errorf("text is required"))
	}

	targetDevice, err := FindDevice(req.DeviceID)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error finding device: %w", err))
	}

	if err := targetDevice.Send(req.Text); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to send to device %s: %w", targetDevice.ID(), err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Sent %d byte(s) to device %s", len(req.Text), targetDevice.ID()),
	})
}

func swipeOptions(req SwipeRequest) touch.SwipeOptions {
	return touch.SwipeOptions{
		Pressure: req.Pressure,
		Duration: req.Duration,
		NoDown:   req.NoDown,
		NoUp:     req.NoUp,
	}
}
