package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootEndpoint(t *testing.T) {
	handler := New("0", false).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Equal(t, "ok", data["status"])
}

func TestRPCEndpoint_RejectsGet(t *testing.T) {
	handler := New("0", false).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rpc", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestJSONRPCValidation(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
		expectedData string
		expectedID   interface{}
	}{
		{
			name:         "empty body",
			body:         "",
			expectedCode: ErrCodeParseError,
			expectedData: "expecting jsonrpc payload",
		},
		{
			name:         "invalid json",
			body:         `{invalid json}`,
			expectedCode: ErrCodeParseError,
			expectedData: "expecting jsonrpc payload",
		},
		{
			name:         "wrong jsonrpc version",
			body:         `{"jsonrpc":"1.0","method":"io_tap","id":1}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: "'jsonrpc' must be '2.0'",
			expectedID:   float64(1),
		},
		{
			name:         "missing id",
			body:         `{"jsonrpc":"2.0","method":"io_tap","params":{}}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: "'id' field is required",
		},
		{
			name:         "missing method",
			body:         `{"jsonrpc":"2.0","id":"abc"}`,
			expectedCode: ErrCodeInvalidRequest,
			expectedData: "'method' is required",
			expectedID:   "abc",
		},
		{
			name:         "unknown method",
			body:         `{"jsonrpc":"2.0","method":"screenshot","id":2}`,
			expectedCode: ErrCodeMethodNotFound,
			expectedData: "Method 'screenshot' not found",
			expectedID:   float64(2),
		},
		{
			name:         "tap without params",
			body:         `{"jsonrpc":"2.0","method":"io_tap","id":3}`,
			expectedCode: ErrCodeInvalidParams,
			expectedData: "'params' is required with fields: deviceId, points, pressure, duration, noUp",
			expectedID:   float64(3),
		},
	}

	handler := New("0", false).Handler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, handler, tt.body)

			assert.Equal(t, "2.0", resp.JSONRPC)
			assert.Nil(t, resp.Result)
			assert.Equal(t, tt.expectedID, resp.ID)
			assert.Equal(t, float64(tt.expectedCode), errorField(t, resp, "code"))
			assert.Equal(t, tt.expectedData, errorField(t, resp, "data"))
		})
	}
}

func TestJSONRPC_InvalidParamsType(t *testing.T) {
	handler := New("0", false).Handler()

	resp := postRPC(t, handler, `{"jsonrpc":"2.0","method":"io_swipe","params":{"points":"nope"},"id":1}`)

	assert.Equal(t, float64(ErrCodeInvalidParams), errorField(t, resp, "code"))
	assert.Contains(t, errorField(t, resp, "data"), "invalid parameters")
}

func TestJSONRPC_TapReachesHelper(t *testing.T) {
	shell := setupFakeDevice(t, "emulator-5554")
	handler := New("0", false).Handler()

	resp := postRPC(t, handler, `{"jsonrpc":"2.0","method":"io_tap","params":{"deviceId":"emulator-5554","points":[{"x":100,"y":200}],"pressure":50},"id":1}`)

	require.Nil(t, resp.Error)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, resp.Result)
	assert.Equal(t, "d 0 100 200 50\nc\nu 0\nc\n", shell.LastProcess().Input())
}

func TestJSONRPC_CommandErrorIsServerError(t *testing.T) {
	setupFakeDevice(t, "emulator-5554")
	handler := New("0", false).Handler()

	resp := postRPC(t, handler, `{"jsonrpc":"2.0","method":"io_tap","params":{"points":[]},"id":1}`)

	assert.Equal(t, float64(ErrCodeServerError), errorField(t, resp, "code"))
	assert.Contains(t, errorField(t, resp, "data"), "at least 1 point")
}

func TestJSONRPC_SessionLifecycle(t *testing.T) {
	shell := setupFakeDevice(t, "emulator-5554")
	handler := New("0", false).Handler()

	info := postRPC(t, handler, `{"jsonrpc":"2.0","method":"session_info","id":1}`)
	require.Nil(t, info.Error)
	result, ok := info.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "emulator-5554", result["deviceId"])
	assert.Equal(t, "ready", result["state"])
	assert.Equal(t, "1234", result["pid"])

	stop := postRPC(t, handler, `{"jsonrpc":"2.0","method":"session_stop","params":{"deviceId":"emulator-5554"},"id":2}`)
	require.Nil(t, stop.Error)
	assert.True(t, shell.LastProcess().Killed())

	again := postRPC(t, handler, `{"jsonrpc":"2.0","method":"session_stop","params":{"deviceId":"emulator-5554"},"id":3}`)
	assert.Equal(t, float64(ErrCodeServerError), errorField(t, again, "code"))
}

func TestExecute(t *testing.T) {
	shell := setupFakeDevice(t, "emulator-5554")

	result, err := Execute("io_send", json.RawMessage(`{"text":"d 0 1 1 50\nc"}`))
	require.NoError(t, err)
	assert.Equal(t, okResponse, result)
	assert.Equal(t, "d 0 1 1 50\nc\n", shell.LastProcess().Input())

	_, err = Execute(ShutdownMethod, nil)
	assert.Error(t, err, "shutdown is only served by a running server")

	_, err = Execute("unknown", nil)
	assert.EqualError(t, err, "method not found: unknown")
}

func TestGetMethodRegistry(t *testing.T) {
	registry := GetMethodRegistry()

	for _, method := range []string{"io_tap", "io_swipe", "io_smooth_swipe", "io_send", "session_info", "session_reset", "session_stop", "agent_install"} {
		assert.Contains(t, registry, method)
	}
	assert.NotContains(t, registry, ShutdownMethod)
}

func TestSendJSONRPCResponse(t *testing.T) {
	w := httptest.NewRecorder()

	sendJSONRPCResponse(w, 123, map[string]string{"test": "data"})

	var jsonResp JSONRPCResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&jsonResp))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "2.0", jsonResp.JSONRPC)
	assert.Equal(t, float64(123), jsonResp.ID)
	assert.Equal(t, map[string]interface{}{"test": "data"}, jsonResp.Result)
}

func TestCORSMiddleware(t *testing.T) {
	handler := New("0", true).Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/rpc", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

	w = httptest.NewRecorder()
	New("0", false).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestServer_ShutdownMethodStopsServer(t *testing.T) {
	shell := setupFakeDevice(t, "emulator-5554")
	port := freePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	srv := New(addr, false)
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	tap, err := http.Post("http://"+addr+"/rpc", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","method":"io_tap","params":{"points":[{"x":1,"y":1}]},"id":1}`))
	require.NoError(t, err)
	tap.Body.Close()

	resp, err := http.Post("http://"+addr+"/rpc", "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","method":"server.shutdown","id":2}`))
	require.NoError(t, err)
	resp.Body.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after shutdown request")
	}

	assert.True(t, shell.LastProcess().Killed(), "helper sessions are stopped with the server")
}

func TestServer_NormalizesAddress(t *testing.T) {
	assert.Equal(t, "localhost:12000", New("12000", false).httpServer.Addr)
	assert.Equal(t, "0.0.0.0:13000", New("0.0.0.0:13000", false).httpServer.Addr)
}
