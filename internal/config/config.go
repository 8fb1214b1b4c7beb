package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	Metrics         string
	IBCEvents       string
	Transactions    string
	OutDir          string
	Bins            int
	ResampleWindow  string
	DuplicatePolicy string
	Renderer        string
	Summary         string
	PGDSN           string
	RunID           string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BENCHVIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("metrics", "metrics.jsonl")
	v.SetDefault("ibc-events", "ibc_events.jsonl")
	v.SetDefault("transactions", "transactions.jsonl")
	v.SetDefault("out-dir", ".")
	v.SetDefault("bins", 50)
	v.SetDefault("resample-window", "1s")
	v.SetDefault("duplicate-policy", "first")
	v.SetDefault("renderer", "gonum")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("benchviz")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		Metrics:         strings.TrimSpace(v.GetString("metrics")),
		IBCEvents:       strings.TrimSpace(v.GetString("ibc-events")),
		Transactions:    strings.TrimSpace(v.GetString("transactions")),
		OutDir:          strings.TrimSpace(v.GetString("out-dir")),
		Bins:            v.GetInt("bins"),
		ResampleWindow:  strings.TrimSpace(v.GetString("resample-window")),
		DuplicatePolicy: strings.TrimSpace(v.GetString("duplicate-policy")),
		Renderer:        strings.TrimSpace(v.GetString("renderer")),
		Summary:         strings.TrimSpace(v.GetString("summary")),
		PGDSN:           v.GetString("pg-dsn"),
		RunID:           strings.TrimSpace(v.GetString("run-id")),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}
