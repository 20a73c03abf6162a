package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service represents a Midnight Brew server found on the network
type Service struct {
	// Instance is the advertised instance name (e.g., "Midnight Brew on cafe-01")
	Instance string

	// Hostname is the mDNS hostname (e.g., "cafe-01.local.")
	Hostname string

	// IP is the server address, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "version=v1.2.0", "path=/api/v1"
	Metadata map[string]string

	// DiscoveredAt is when the server was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s (%s) at %s", s.Instance, s.Hostname, net.JoinHostPort(s.IP, strconv.Itoa(s.Port)))
}

// BaseURL returns the HTTP base URL for the server
func (s *Service) BaseURL() string {
	return "http://" + net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// Version returns the server version from the TXT record, if advertised
func (s *Service) Version() string {
	return s.GetMetadata("version")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
