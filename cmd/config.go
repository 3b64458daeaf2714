package cmd

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/etnz/assettrack"
	"github.com/joho/godotenv"
)

const (
	EnvOutputDir     = "ATRACK_OUTPUT_DIR"
	EnvMatchStrategy = "ATRACK_MATCH_STRATEGY"
	EnvDedup         = "ATRACK_DEDUP"
	EnvLogLevel      = "ATRACK_LOG_LEVEL"
	EnvLogFormat     = "ATRACK_LOG_FORMAT"
	EnvMapping       = "ATRACK_MAPPING"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	OutputDir     string // where flat exports are written
	MatchStrategy string // none, across or similar
	Dedup         string // comma separated Primary:Secondary pairs
	LogLevel      string // debug, info, warn or error
	LogFormat     string // text or json
	Mapping       string // JSONPath mapping file for .json exports
	Plain         bool   // print markdown without terminal styling
}

// LoadConfig reads the configuration from the environment, falling back on
// the given .env files (".env" by default, ignored when missing) and then on
// defaults. Process environment wins over .env files.
func LoadConfig(envFiles ...string) (Config, error) {
	dotenv, err := godotenv.Read(envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}
	get := func(key, fallback string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		if v, ok := dotenv[key]; ok {
			return v
		}
		return fallback
	}

	var defaultDedup string
	for i, p := range assettrack.DefaultDedupPolicies {
		if i > 0 {
			defaultDedup += ","
		}
		defaultDedup += p.String()
	}

	return Config{
		OutputDir:     get(EnvOutputDir, "."),
		MatchStrategy: get(EnvMatchStrategy, assettrack.NoMatching.String()),
		Dedup:         get(EnvDedup, defaultDedup),
		LogLevel:      get(EnvLogLevel, "info"),
		LogFormat:     get(EnvLogFormat, "text"),
		Mapping:       get(EnvMapping, ""),
	}, nil
}

// SetFlags binds global flags to c, using its current values as defaults.
func (c *Config) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.OutputDir, "o", c.OutputDir, "Directory the flat exports are written to.")
	f.StringVar(&c.MatchStrategy, "match", c.MatchStrategy, "Like-kind exchange matching: none, across or similar.")
	f.StringVar(&c.Dedup, "dedup", c.Dedup, "Services double reporting transfers, as comma separated Primary:Secondary pairs.")
	f.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error.")
	f.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log format: text or json.")
	f.StringVar(&c.Mapping, "mapping", c.Mapping, "JSONPath mapping file used to read .json exports.")
	f.BoolVar(&c.Plain, "plain", c.Plain, "Print reports as raw markdown.")
}

// Env returns c as environment variable assignments.
func (c *Config) Env() []string {
	return []string{
		EnvOutputDir + "=" + c.OutputDir,
		EnvMatchStrategy + "=" + c.MatchStrategy,
		EnvDedup + "=" + c.Dedup,
		EnvLogLevel + "=" + c.LogLevel,
		EnvLogFormat + "=" + c.LogFormat,
		EnvMapping + "=" + c.Mapping,
	}
}

// options turns the configuration into inventory options.
func (c *Config) options() ([]assettrack.Option, error) {
	strategy, err := assettrack.ParseMatchStrategy(c.MatchStrategy)
	if err != nil {
		return nil, err
	}
	policies, err := assettrack.ParseDedupPolicies(c.Dedup)
	if err != nil {
		return nil, err
	}
	opts := []assettrack.Option{assettrack.WithDedupPolicies(policies...)}
	if m := strategy.Matcher(); m != nil {
		opts = append(opts, assettrack.WithExchangeMatcher(m))
	}
	return opts, nil
}
