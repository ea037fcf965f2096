package config

import (
	"time"
)

// ApplyDefaults fills every unset field with its documented default.  The
// result always passes Validate.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 5 * time.Minute
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 32 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Pipeline.Format == "" {
		cfg.Pipeline.Format = "sdf"
	}
	if cfg.Pipeline.NConf == 0 {
		cfg.Pipeline.NConf = 1
	}

	if cfg.Extraction.Method == "" {
		cfg.Extraction.Method = "metric"
	}
	if cfg.Extraction.K == 0 {
		cfg.Extraction.K = 3
	}
	if cfg.Extraction.MaxDist == 0 {
		cfg.Extraction.MaxDist = 10.0
	}
	if cfg.Extraction.Intervals == 0 {
		cfg.Extraction.Intervals = 20
	}

	if cfg.Obabel.Binary == "" {
		cfg.Obabel.Binary = "obabel"
	}
	if cfg.Obabel.Timeout == 0 {
		cfg.Obabel.Timeout = 5 * time.Minute
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 24 * time.Hour
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "molgraph"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "pipeline"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
}

// Default returns a fully-populated default configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
