package server

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/touchcli/commands"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// invalidParamsError marks a request whose params could not be decoded.
type invalidParamsError struct {
	msg string
}

func (e *invalidParamsError) Error() string {
	return e.msg
}

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and embedded clients
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"io_tap":          handleIoTap,
		"io_swipe":        handleIoSwipe,
		"io_smooth_swipe": handleIoSmoothSwipe,
		"io_send":         handleIoSend,
		"session_info":    handleSessionInfo,
		"session_reset":   handleSessionReset,
		"session_stop":    handleSessionStop,
		"agent_install":   handleAgentInstall,
	}
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func Execute(method string, params json.RawMessage) (interface{}, error) {
	registry := GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}

// decodeParams unmarshals params into v. fields names what the caller is
// expected to send and is echoed back on failure.
func decodeParams(params json.RawMessage, v interface{}, fields string, required bool) error {
	if len(params) == 0 {
		if required {
			return &invalidParamsError{fmt.Sprintf("'params' is required with fields: %s", fields)}
		}
		return nil
	}

	if err := json.Unmarshal(params, v); err != nil {
		return &invalidParamsError{fmt.Sprintf("invalid parameters: %v. Expected fields: %s", err, fields)}
	}

	return nil
}

// unwrap turns a command response into a handler result.
func unwrap(response *commands.CommandResponse, result interface{}) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	if result == nil {
		return response.Data, nil
	}
	return result, nil
}

func handleIoTap(params json.RawMessage) (interface{}, error) {
	var req commands.TapRequest
	if err := decodeParams(params, &req, "deviceId, points, pressure, duration, noUp", true); err != nil {
		return nil, err
	}

	return unwrap(commands.TapCommand(req), okResponse)
}

func handleIoSwipe(params json.RawMessage) (interface{}, error) {
	var req commands.SwipeRequest
	if err := decodeParams(params, &req, "deviceId, points, pressure, duration, noDown, noUp", true); err != nil {
		return nil, err
	}

	return unwrap(commands.SwipeCommand(req), okResponse)
}

func handleIoSmoothSwipe(params json.RawMessage) (interface{}, error) {
	var req commands.SmoothSwipeRequest
	if err := decodeParams(params, &req, "deviceId, points, pressure, duration, noDown, noUp, part", true); err != nil {
		return nil, err
	}

	return unwrap(commands.SmoothSwipeCommand(req), okResponse)
}

func handleIoSend(params json.RawMessage) (interface{}, error) {
	var req commands.SendRequest
	if err := decodeParams(params, &req, "deviceId, text", true); err != nil {
		return nil, err
	}

	return unwrap(commands.SendCommand(req), okResponse)
}

func handleSessionInfo(params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "deviceId", false); err != nil {
		return nil, err
	}

	return unwrap(commands.InfoCommand(req), nil)
}

func handleSessionReset(params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "deviceId", false); err != nil {
		return nil, err
	}

	return unwrap(commands.ResetCommand(req), nil)
}

func handleSessionStop(params json.RawMessage) (interface{}, error) {
	var req commands.SessionRequest
	if err := decodeParams(params, &req, "deviceId", false); err != nil {
		return nil, err
	}

	return unwrap(commands.StopCommand(req), okResponse)
}

func handleAgentInstall(params json.RawMessage) (interface{}, error) {
	var req commands.InstallRequest
	if err := decodeParams(params, &req, "deviceId, fromGithub, force", false); err != nil {
		return nil, err
	}

	return unwrap(commands.InstallCommand(req), nil)
}
