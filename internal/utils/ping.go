package utils

import (
	"fmt"
	"net"
	"time"
)

// PingAddress checks if a host:port pair accepts TCP connections
func PingAddress(host, port string, timeout time.Duration) error {
	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}
