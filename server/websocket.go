package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/touchcli/utils"
)

// rpcSocket is one /ws client. Replies may be written from one goroutine at
// a time only.
type rpcSocket struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// upgrader accepts any origin with CORS enabled and same-origin or
// origin-less clients otherwise.
func (s *Server) upgrader() *websocket.Upgrader {
	checkOrigin := isSameOrigin
	if s.enableCORS {
		checkOrigin = func(r *http.Request) bool { return true }
	}

	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

// handleWebSocket serves JSON-RPC frames from one client. Frames are answered
// in the order they arrive. Gestures racing in from other clients on the same
// device are ordered by the device's gesture lock.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		utils.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	socket := &rpcSocket{conn: conn}
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			utils.Verbose("WebSocket connection closed: %v", err)
			return
		}

		if messageType != websocket.TextMessage {
			_ = socket.fail(nil, &rpcError{ErrCodeInvalidRequest, "Invalid Request", "only text messages accepted for requests"})
			continue
		}

		id, result, rpcErr := s.serveFrame(frame)
		if rpcErr != nil {
			_ = socket.fail(id, rpcErr)
			continue
		}
		_ = socket.reply(id, result)
	}
}

// serveFrame decodes, validates and runs one request frame.
func (s *Server) serveFrame(frame []byte) (interface{}, interface{}, *rpcError) {
	var req JSONRPCRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		return nil, nil, &rpcError{ErrCodeParseError, "Parse error", "expecting jsonrpc payload"}
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		return req.ID, nil, rpcErr
	}

	utils.Info("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, rpcErr := s.call(req)
	return req.ID, result, rpcErr
}

func (e *rpcError) object() map[string]interface{} {
	return map[string]interface{}{
		"code":    e.code,
		"message": e.message,
		"data":    e.data,
	}
}

func (sock *rpcSocket) reply(id interface{}, result interface{}) error {
	return sock.write(JSONRPCResponse{JSONRPC: "2.0", Result: result, ID: id})
}

func (sock *rpcSocket) fail(id interface{}, rpcErr *rpcError) error {
	return sock.write(JSONRPCResponse{JSONRPC: "2.0", Error: rpcErr.object(), ID: id})
}

func (sock *rpcSocket) write(response JSONRPCResponse) error {
	sock.writeMu.Lock()
	defer sock.writeMu.Unlock()
	return sock.conn.WriteJSON(response)
}
