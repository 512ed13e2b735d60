// Package discovery finds a free TCP port for the bridge listener.
package discovery

import (
	"net"
	"strconv"

	"github.com/bryanchriswhite/FocusBridge/internal/logger"
)

// PortRange is how many consecutive ports are tried, base port included
const PortRange = 100

// FindAvailablePort returns the first port in [basePort, basePort+PortRange)
// that can be bound on bindAddress. Candidates above 65535 are skipped. When
// nothing is free the base port is returned and the caller's own bind will
// report the conflict.
func FindAvailablePort(bindAddress string, basePort uint16) uint16 {
	log := logger.WithComponent("discovery")

	for offset := 0; offset < PortRange; offset++ {
		candidate := int(basePort) + offset
		if candidate > 65535 {
			break
		}
		if IsPortAvailable(bindAddress, uint16(candidate)) {
			if offset > 0 {
				log.Info().
					Uint16("base_port", basePort).
					Int("port", candidate).
					Msg("Base port busy, using next free port")
			}
			return uint16(candidate)
		}
	}

	log.Warn().
		Uint16("base_port", basePort).
		Int("range", PortRange).
		Msg("No free port found, falling back to base port")
	return basePort
}

// IsPortAvailable reports whether port can be bound on bindAddress right now
func IsPortAvailable(bindAddress string, port uint16) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort(bindAddress, strconv.Itoa(int(port))))
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
