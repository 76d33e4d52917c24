package web

import (
	"fmt"
	"net"
)

const maxPortAttempts = 50

// IsPortAvailable reports whether the host can bind the given TCP port.
func IsPortAvailable(host string, port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// FindAvailablePort probes ascending ports starting at start and returns the
// first one that can be bound.
func FindAvailablePort(host string, start int) (int, error) {
	for port := start; port < start+maxPortAttempts && port <= 65535; port++ {
		if IsPortAvailable(host, port) {
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", start, start+maxPortAttempts-1)
}
