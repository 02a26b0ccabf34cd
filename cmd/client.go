package cmd

import (
	"dirsync/core/client"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serverFlags locate the catalog server for the client commands.
type serverFlags struct {
	url  string
	port int
}

func (f *serverFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Catalog server host or URL")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "Catalog server port")
}

// newClient builds a catalog client from config with flag overrides.
func (f *serverFlags) newClient(cfg client.Config, logg *zap.Logger) (*client.Client, error) {
	raw := cfg.URL
	if f.url != "" {
		raw = f.url
	}
	resolved, err := client.ResolveURL(raw, f.port)
	if err != nil {
		return nil, err
	}
	cfg.URL = resolved
	logg.Debug("Using catalog server", zap.String("url", resolved))
	return client.New(cfg, logg)
}
