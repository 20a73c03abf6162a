package discovery

import (
	"fmt"
	"sort"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/midnightbrew/internal/logging"
	"go.uber.org/zap"
)

// Registration is a live mDNS advertisement.
type Registration struct {
	server *zeroconf.Server
}

// Register advertises a server instance on port with the given TXT
// metadata. Call Shutdown to withdraw it.
func Register(instance string, port int, metadata map[string]string) (*Registration, error) {
	if instance == "" {
		return nil, fmt.Errorf("mDNS instance name is required")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	srv, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, TXTRecords(metadata), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising server via mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return &Registration{server: srv}, nil
}

// Shutdown withdraws the advertisement.
func (r *Registration) Shutdown() {
	if r == nil || r.server == nil {
		return
	}
	r.server.Shutdown()
	logging.Debug("mDNS advertisement withdrawn")
}

// TXTRecords converts metadata to sorted "key=value" TXT strings.
func TXTRecords(metadata map[string]string) []string {
	txt := make([]string, 0, len(metadata))
	for k, v := range metadata {
		txt = append(txt, k+"="+v)
	}
	sort.Strings(txt)
	return txt
}
