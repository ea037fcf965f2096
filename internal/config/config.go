// Package config defines all configuration structures for MolGraph-Pipeline.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/MolGraph-Pipeline/pkg/types/chem"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PipelineConfig holds the stream-level conversion settings.
type PipelineConfig struct {
	Format             string `mapstructure:"format"` // "sdf" | "smi"
	NConf              int    `mapstructure:"n_conf"`
	TwoD               bool   `mapstructure:"two_d"`
	ConformersFromFile bool   `mapstructure:"conformers_from_file"`
	SplitComponents    bool   `mapstructure:"split_components"`
}

// ExtractionConfig holds the node feature-extraction settings.
type ExtractionConfig struct {
	Method    string  `mapstructure:"method"` // "metric" | "topological"
	AtomTypes []int   `mapstructure:"atom_types"`
	K         int     `mapstructure:"k"`
	Threshold float64 `mapstructure:"threshold"`
	MaxDist   float64 `mapstructure:"max_dist"`
	Intervals int     `mapstructure:"n_intervals"`
}

// ObabelConfig holds the external conversion tool settings.
type ObabelConfig struct {
	Binary  string        `mapstructure:"binary"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RedisConfig holds the optional shared conversion cache settings.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// MetricsConfig holds the metrics registry settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration of both binaries.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	Obabel     ObabelConfig     `mapstructure:"obabel"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate rejects configurations the pipeline would refuse at run time, so
// misconfiguration surfaces at startup rather than mid-stream.
func (c *Config) Validate() error {
	if _, err := chem.ParseFileFormat(c.Pipeline.Format); err != nil {
		return fmt.Errorf("pipeline.format: %w", err)
	}
	if _, err := chem.ParseFeatureMethod(c.Extraction.Method); err != nil {
		return fmt.Errorf("extraction.method: %w", err)
	}
	if c.Pipeline.NConf < 0 {
		return fmt.Errorf("pipeline.n_conf must not be negative, got %d", c.Pipeline.NConf)
	}
	if c.Extraction.K < 0 {
		return fmt.Errorf("extraction.k must not be negative, got %d", c.Extraction.K)
	}
	if c.Extraction.Intervals < 0 {
		return fmt.Errorf("extraction.n_intervals must not be negative, got %d", c.Extraction.Intervals)
	}
	if c.Extraction.MaxDist < 0 {
		return fmt.Errorf("extraction.max_dist must not be negative, got %f", c.Extraction.MaxDist)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug|info|warn|error, got %q", c.Log.Level)
	}
	return nil
}

// PipelineOptions maps the configuration onto the option structs consumed by
// the conversion pipeline.
func (c *Config) PipelineOptions() chem.PipelineOptions {
	return chem.PipelineOptions{
		Format:             chem.FileFormat(c.Pipeline.Format),
		NConf:              c.Pipeline.NConf,
		TwoD:               c.Pipeline.TwoD,
		ConformersFromFile: c.Pipeline.ConformersFromFile,
		SplitComponents:    c.Pipeline.SplitComponents,
		Extraction: chem.ExtractionOptions{
			Method:    chem.FeatureMethod(c.Extraction.Method),
			AtomTypes: c.Extraction.AtomTypes,
			K:         c.Extraction.K,
			Threshold: c.Extraction.Threshold,
			MaxDist:   c.Extraction.MaxDist,
			Intervals: c.Extraction.Intervals,
		},
	}
}
