// Package config loads command settings from flags, FEESCOPE_ environment variables and an
// optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "FEESCOPE"

// Defaults shared by every command.
const (
	DefaultDays         = 30
	DefaultWorkers      = 4
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 500 * time.Millisecond
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultTolerance    = "1000"
)

// Common holds settings every command accepts.
type Common struct {
	SubgraphURL       string
	BlocksSubgraphURL string
	HTTPTimeout       time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	Workers           int
	Out               string
	PGDSN             string
	MetricsAddr       string
	LogLevel          string
}

// Window selects the reconstructed days: from an explicit timestamp, or the last Days days.
type Window struct {
	Days int
	From uint64
}

// newViper merges config file, environment variables, and flags.
func newViper(cfgFile string, flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("days", DefaultDays)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("max-retries", DefaultMaxRetries)
	v.SetDefault("retry-backoff", DefaultRetryBackoff)
	v.SetDefault("http-timeout", DefaultHTTPTimeout)
	v.SetDefault("tolerance", DefaultTolerance)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadCommon(v *viper.Viper) (Common, error) {
	c := Common{
		SubgraphURL:       v.GetString("subgraph-url"),
		BlocksSubgraphURL: v.GetString("blocks-subgraph-url"),
		HTTPTimeout:       v.GetDuration("http-timeout"),
		MaxRetries:        v.GetInt("max-retries"),
		RetryBackoff:      v.GetDuration("retry-backoff"),
		Workers:           v.GetInt("workers"),
		Out:               v.GetString("out"),
		PGDSN:             v.GetString("pg-dsn"),
		MetricsAddr:       v.GetString("metrics-addr"),
		LogLevel:          v.GetString("log-level"),
	}
	if c.Workers <= 0 {
		return Common{}, fmt.Errorf("workers must be positive")
	}
	if c.MaxRetries < 0 {
		return Common{}, fmt.Errorf("max-retries must not be negative")
	}
	return c, nil
}

func loadWindow(v *viper.Viper) (Window, error) {
	from, err := ParseTimestamp(v.GetString("from"))
	if err != nil {
		return Window{}, fmt.Errorf("parse from: %w", err)
	}
	w := Window{Days: v.GetInt("days"), From: from}
	if w.From == 0 && w.Days <= 0 {
		return Window{}, fmt.Errorf("days must be positive")
	}
	return w, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
