package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mobile-next/touchcli/commands"
	"github.com/mobile-next/touchcli/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 90 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

// ShutdownMethod asks a running server to stop.
const ShutdownMethod = "server.shutdown"

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// rpcError is a JSON-RPC error object before it is written.
type rpcError struct {
	code    int
	message string
	data    string
}

// Server exposes the helper commands over JSON-RPC on /rpc and /ws.
type Server struct {
	httpServer   *http.Server
	enableCORS   bool
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New prepares a server listening on addr. A bare port or ":port" binds
// localhost.
func New(addr string, enableCORS bool) *Server {
	s := &Server{
		enableCORS: enableCORS,
		shutdownCh: make(chan struct{}),
	}

	s.httpServer = &http.Server{
		Addr:         utils.NormalizeListenAddr(addr),
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	return s
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the routed handler, wrapped for CORS when enabled.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", sendBanner)
	mux.HandleFunc("/rpc", s.handleJSONRPC)
	mux.HandleFunc("/ws", s.handleWebSocket)

	if s.enableCORS {
		return corsMiddleware(mux)
	}
	return mux
}

// ListenAndServe blocks until the listener fails or a shutdown is requested.
// Open helper sessions are stopped before it returns.
func (s *Server) ListenAndServe() error {
	errCh := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	var err error
	select {
	case err = <-errCh:
	case <-s.shutdownCh:
		utils.Info("Shutdown requested, stopping server")
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		err = s.httpServer.Shutdown(ctx)
		cancel()
	}

	if cleanupErr := commands.CloseAll(); cleanupErr != nil {
		utils.Warn("failed to stop helper sessions: %v", cleanupErr)
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RequestShutdown stops the server after in-flight requests complete.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// StartServer runs a server on addr until it is shut down.
func StartServer(addr string, enableCORS bool) error {
	return New(addr, enableCORS).ListenAndServe()
}

// methods is the dispatch table for this server, including the
// server-scoped shutdown method.
func (s *Server) methods() map[string]HandlerFunc {
	registry := GetMethodRegistry()
	registry[ShutdownMethod] = func(params json.RawMessage) (interface{}, error) {
		s.RequestShutdown()
		return okResponse, nil
	}
	return registry
}

func validateJSONRPCRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'jsonrpc' must be '2.0'"}
	}

	if req.ID == nil {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'id' field is required"}
	}

	if req.Method == "" {
		return &rpcError{ErrCodeInvalidRequest, "Invalid Request", "'method' is required"}
	}

	return nil
}

// call runs req against the dispatch table and returns either a result or
// an error object.
func (s *Server) call(req JSONRPCRequest) (interface{}, *rpcError) {
	handler, exists := s.methods()[req.Method]
	if !exists {
		return nil, &rpcError{ErrCodeMethodNotFound, "Method not found", fmt.Sprintf("Method '%s' not found", req.Method)}
	}

	result, err := handler(req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		var paramsErr *invalidParamsError
		if errors.As(err, &paramsErr) {
			return nil, &rpcError{ErrCodeInvalidParams, "Invalid params", err.Error()}
		}
		return nil, &rpcError{ErrCodeServerError, "Server error", err.Error()}
	}

	return result, nil
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, "Parse error", "expecting jsonrpc payload")
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Info("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, rpcErr := s.call(req)
	if rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
