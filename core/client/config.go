package client

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dirsync/core/retry"
)

// Config holds configuration for the catalog client.
type Config struct {
	// URL is the base address of the catalog server.
	URL string `mapstructure:"url" default:"http://localhost:8080"`
	// ApiKey is sent with every request when set.
	ApiKey string `mapstructure:"api_key" default:""`
	// Timeout bounds listing requests. Transfers are bounded by their context only.
	Timeout time.Duration `mapstructure:"timeout" default:"30s"`
	// Destination is the directory, or key prefix for bucket targets, to sync into.
	Destination string `mapstructure:"destination" default:"."`
	// Target selects the destination kind: "local" or "bucket".
	Target string `mapstructure:"target" default:"local"`
	// Workers is the number of concurrent transfers during sync.
	Workers int `mapstructure:"workers" default:"1"`
	// Cache enables the metadata cache.
	Cache bool `mapstructure:"cache" default:"true"`
	// Retry controls retries of listing requests.
	Retry retry.Policy `mapstructure:"retry"`
}

const (
	TargetLocal  = "local"
	TargetBucket = "bucket"
)

// IsValidTarget checks if the configured target is known.
func (c Config) IsValidTarget() bool {
	switch c.Target {
	case TargetLocal, TargetBucket:
		return true
	default:
		return false
	}
}

// ResolveURL turns a host or URL given on the command line into a server
// URL. A missing scheme means http. A positive port replaces the one in raw.
func ResolveURL(raw string, port int) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("server url %q has no host", raw)
	}
	if port > 0 {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}
	return u.String(), nil
}
