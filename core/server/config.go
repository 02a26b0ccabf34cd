package server

import (
	"net"
	"path/filepath"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Root is the directory published by the catalog.
	Root string `mapstructure:"root" default:"."`
	// Recursive makes the scan descend into subdirectories.
	Recursive bool `mapstructure:"recursive" default:"false"`
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// Auto binds an ephemeral port on all interfaces instead of Port.
	Auto bool `mapstructure:"auto" default:"false"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// SSL serves HTTPS using the certificate pair in CertPath.
	SSL bool `mapstructure:"ssl" default:"false"`
	// CertPath is the directory holding cert.pem and key.pem.
	CertPath string `mapstructure:"cert_path" default:"."`
	// Metrics exposes Prometheus metrics at /metrics.
	Metrics bool `mapstructure:"metrics" default:"true"`
}

const (
	CertFile = "cert.pem"
	KeyFile  = "key.pem"
)

// Address returns the listen address.
func (c Config) Address() string {
	if c.Auto {
		return net.JoinHostPort("0.0.0.0", "0")
	}
	return net.JoinHostPort("", c.Port)
}

// CertFiles returns the certificate and key paths used when SSL is enabled.
func (c Config) CertFiles() (cert, key string) {
	return filepath.Join(c.CertPath, CertFile), filepath.Join(c.CertPath, KeyFile)
}
