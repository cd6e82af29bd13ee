package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a taxon invocation.
// Values are populated from .taxon.yaml, TAXON_* env vars, and CLI flags.
type Config struct {
	MigrationsDir string `mapstructure:"migrations_dir"`
	ExportPath    string `mapstructure:"export_path"`   // "" means stdout
	ExportFormat  string `mapstructure:"export_format"` // jsonl, csv, sqlite
	EventsPath    string `mapstructure:"events_path"`   // "" disables the audit log
	WeightsPath   string `mapstructure:"weights_path"`  // "" uses built-in weights
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("migrations_dir", "migrations")
	viper.SetDefault("export_path", "")
	viper.SetDefault("export_format", "jsonl")
	viper.SetDefault("events_path", "")
	viper.SetDefault("weights_path", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
