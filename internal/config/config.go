// internal/config/config.go
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the six runtime knobs SPEC_FULL §6.3 names.
type Config struct {
	DataDir       string   `mapstructure:"data_dir"`
	CORSOrigins   []string `mapstructure:"cors_origins"`
	MaxQueryBytes int      `mapstructure:"max_query_bytes"`
	MaxResultRows int      `mapstructure:"max_result_rows"`
	LogLevel      string   `mapstructure:"log_level"`
	Addr          string   `mapstructure:"addr"`
}

// Defaults, chosen where SPEC_FULL §6.3 names a knob but not a value: a
// data directory under the working directory, permissive-but-present CORS, a query
// length cap generous enough for any statement this grammar can express,
// a result-row cap that protects the façade's JSON encoding from an
// unbounded SELECT, info-level logging, and the conventional 8080 port.
const (
	defaultDataDir       = "./data"
	defaultMaxQueryBytes = 1 << 20 // 1 MiB
	defaultMaxResultRows = 10000
	defaultLogLevel      = "info"
	defaultAddr          = ":8080"
)

// Load reads configuration from environment variables prefixed `SHELFDB_`
// and, if present, a `shelfdb` config file (yaml/json/toml/env) on the
// current directory or `/etc/shelfdb/`, via `github.com/spf13/viper`
// (SPEC_FULL §6.3).
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHELFDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("shelfdb")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shelfdb/")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	v.SetDefault("data_dir", defaultDataDir)
	v.SetDefault("cors_origins", []string{"*"})
	v.SetDefault("max_query_bytes", defaultMaxQueryBytes)
	v.SetDefault("max_result_rows", defaultMaxResultRows)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("addr", defaultAddr)

	cfg := &Config{
		DataDir:       v.GetString("data_dir"),
		CORSOrigins:   v.GetStringSlice("cors_origins"),
		MaxQueryBytes: v.GetInt("max_query_bytes"),
		MaxResultRows: v.GetInt("max_result_rows"),
		LogLevel:      v.GetString("log_level"),
		Addr:          v.GetString("addr"),
	}
	return cfg, nil
}
