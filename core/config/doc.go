// Package config loads the dirsync configuration.
//
// Values come from struct tag defaults, an optional dirsync.yaml (or any
// other format viper reads), a .env file and the environment, in that order
// of precedence. Command line flags are applied on top by the cmd package.
//
// # Sections
//
//   - server: published root, port, TLS and API key of the catalog server
//   - client: server URL, destination, workers and retry policy of the sync client
//   - storage: S3/MinIO credentials and bucket for the bucket target
//   - database: metadata cache database (SQLite file or MySQL)
//   - log: level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Server.Port)
package config
