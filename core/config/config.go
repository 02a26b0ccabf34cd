package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"dirsync/core/client"
	"dirsync/core/database"
	"dirsync/core/logger"
	"dirsync/core/server"
	"dirsync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileName is the optional config file looked up next to the .env file,
// with any extension viper understands (dirsync.yaml, dirsync.toml, ...).
const FileName = "dirsync"

// Config holds all configuration for the application.
type Config struct {
	// Server holds configuration for the catalog server.
	Server server.Config `mapstructure:"server"`
	// Client holds configuration for the sync client.
	Client client.Config `mapstructure:"client"`
	// Storage holds configuration for the bucket sync target.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the metadata cache database.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig reads configuration from, in increasing precedence, struct tag
// defaults, the optional dirsync config file, the .env file and the
// environment. Keys map to variables by upper-casing and replacing dots,
// so server.port is SERVER_PORT.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")

	v.SetConfigName(FileName)
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if !c.Client.IsValidTarget() {
		return fmt.Errorf("client.target must be %q or %q, got %q", client.TargetLocal, client.TargetBucket, c.Client.Target)
	}
	if c.Client.Workers < 1 {
		return fmt.Errorf("client.workers must be at least 1, got %d", c.Client.Workers)
	}
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverMySQL:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", database.DriverSQLite, database.DriverMySQL, c.Database.Driver)
	}
	return nil
}

// bindValues walks the struct and registers every mapstructure key with
// its default tag, so AutomaticEnv can see keys that have no other source.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		v.SetDefault(key, field.Tag.Get("default"))
	}
}
