package util

import (
	"fmt"
	"net"
)

// ParseAddress splits a TCP or UDP address into its host and port
func ParseAddress(addr net.Addr) (string, int, error) {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP.String(), a.Port, nil
	case *net.UDPAddr:
		return a.IP.String(), a.Port, nil
	}

	return "", 0, fmt.Errorf("address %v is neither tcp nor udp", addr)
}
