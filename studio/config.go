package studio

import (
	"fmt"
	"strconv"
	"strings"

	internalstrings "github.com/amonks/blueprint/internal/strings"
)

// DefaultPort is used when no serve address is configured.
const DefaultPort = 8323

// ResolveAddr returns the studio server address, preferring the explicit
// value over the configured one, falling back to the default port.
func ResolveAddr(configured, explicit string) (string, error) {
	if !internalstrings.IsBlank(explicit) {
		return normalizeAddr(explicit)
	}
	if !internalstrings.IsBlank(configured) {
		return normalizeAddr(configured)
	}
	return fmt.Sprintf("127.0.0.1:%d", DefaultPort), nil
}

func normalizeAddr(addr string) (string, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return "", fmt.Errorf("address is required")
	}
	if strings.Contains(trimmed, ":") {
		return trimmed, nil
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid port %q", trimmed)
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("port out of range: %d", port)
	}
	return fmt.Sprintf("127.0.0.1:%d", port), nil
}
