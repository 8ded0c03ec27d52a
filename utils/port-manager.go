package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.ListenTCP("tcp4", &net.TCPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}

// NormalizeListenAddr turns a bare port ("12000") or ":port" into host:port,
// defaulting the host to localhost.
func NormalizeListenAddr(addr string) string {
	if !strings.Contains(addr, ":") {
		if _, err := strconv.Atoi(addr); err == nil {
			addr = ":" + addr
		}
	}

	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	return addr
}

// EnsureListenAddrFree fails when another process already listens on addr.
func EnsureListenAddrFree(addr string) error {
	host, portStr, err := net.SplitHostPort(NormalizeListenAddr(addr))
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in listen address %q: %w", addr, err)
	}

	if host == "localhost" {
		host = "127.0.0.1"
	}

	if !IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use on %s", port, host)
	}

	return nil
}
