package env

import (
	"os"
	"strings"
)

// Prefix namespaces every variable the service reads.
const Prefix = "PLACESHARE_"

// Get returns PLACESHARE_<key> when set, then the bare key, then fallback.
// Bare keys cover process-level knobs like LOG_FORMAT that operators set
// without the service prefix.
func Get(key, fallback string) string {
	key = strings.TrimPrefix(key, Prefix)
	if val := strings.TrimSpace(os.Getenv(Prefix + key)); val != "" {
		return val
	}
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
