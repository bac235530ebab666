package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testOwner = "0x1111111111111111111111111111111111111111"
	testPool  = "0xAbCdEf0000000000000000000000000000000001"
)

func ownerFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("owner", pflag.ContinueOnError)
	fs.String("owner", "", "")
	fs.String("pool", "", "")
	fs.Int("days", DefaultDays, "")
	fs.String("from", "", "")
	fs.Int("workers", DefaultWorkers, "")
	fs.Bool("modular", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadOwnerDefaults(t *testing.T) {
	cfg, err := LoadOwner("", ownerFlags(t, "--owner", testOwner, "--pool", testPool))
	require.NoError(t, err)

	assert.Equal(t, testOwner, cfg.Owner)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", cfg.Pool)
	assert.Equal(t, DefaultDays, cfg.Days)
	assert.Zero(t, cfg.From)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, DefaultRetryBackoff, cfg.RetryBackoff)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Modular)
}

func TestLoadOwnerEnvAndFlags(t *testing.T) {
	t.Setenv("FEESCOPE_OWNER", testOwner)
	t.Setenv("FEESCOPE_POOL", testPool)
	t.Setenv("FEESCOPE_MAX_RETRIES", "7")
	t.Setenv("FEESCOPE_WORKERS", "2")

	cfg, err := LoadOwner("", ownerFlags(t, "--workers", "9", "--from", "2024-01-02T00:00:00Z", "--modular"))
	require.NoError(t, err)

	assert.Equal(t, testOwner, cfg.Owner)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 9, cfg.Workers, "changed flag wins over env")
	assert.Equal(t, uint64(1704153600), cfg.From)
	assert.True(t, cfg.Modular)
}

func TestLoadOwnerInvalid(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"missing owner", []string{"--pool", testPool}},
		{"bad pool", []string{"--owner", testOwner, "--pool", "0x123"}},
		{"bad from", []string{"--owner", testOwner, "--pool", testPool, "--from", "yesterday"}},
		{"no window", []string{"--owner", testOwner, "--pool", testPool, "--days", "0"}},
		{"no workers", []string{"--owner", testOwner, "--pool", testPool, "--workers", "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadOwner("", ownerFlags(t, tc.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feescope.yaml")
	content := "position: \"42\"\ndays: 7\nhttp-timeout: 5s\nout: ./data/fees.jsonl\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	fs := pflag.NewFlagSet("daily", pflag.ContinueOnError)
	fs.String("position", "", "")
	fs.Int("days", DefaultDays, "")
	require.NoError(t, fs.Parse(nil))

	cfg, err := LoadDaily(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.Position)
	assert.Equal(t, 7, cfg.Days)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "./data/fees.jsonl", cfg.Out)

	_, err = LoadDaily(filepath.Join(dir, "missing.yaml"), fs)
	assert.Error(t, err)
}

func TestLoadEstimate(t *testing.T) {
	fs := pflag.NewFlagSet("estimate", pflag.ContinueOnError)
	fs.String("pool", "", "")
	fs.Int32("tick-lower", 0, "")
	fs.Int32("tick-upper", 0, "")
	fs.Int("days", DefaultDays, "")
	fs.String("liquidity-usd", "", "")
	require.NoError(t, fs.Parse([]string{"--pool", testPool, "--tick-lower", "-600", "--tick-upper", "600", "--days", "3", "--liquidity-usd", "2500.5"}))

	cfg, err := LoadEstimate("", fs)
	require.NoError(t, err)
	assert.Equal(t, int32(-600), cfg.TickLower)
	assert.Equal(t, int32(600), cfg.TickUpper)
	assert.Equal(t, 3, cfg.Days)
	assert.Equal(t, "2500.5", cfg.LiquidityUSD.String())

	require.NoError(t, fs.Set("tick-upper", "-600"))
	_, err = LoadEstimate("", fs)
	assert.ErrorContains(t, err, "tick-lower")

	require.NoError(t, fs.Set("tick-upper", "600"))
	require.NoError(t, fs.Set("liquidity-usd", "-1"))
	_, err = LoadEstimate("", fs)
	assert.Error(t, err)
}

func TestLoadVerify(t *testing.T) {
	fs := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	fs.String("rpc", "", "")
	fs.String("position", "", "")
	fs.String("position-manager", "", "")
	fs.String("tolerance", DefaultTolerance, "")
	require.NoError(t, fs.Parse([]string{"--rpc", "http://localhost:8545", "--position", "1234"}))

	cfg, err := LoadVerify("", fs)
	require.NoError(t, err)
	assert.Equal(t, "1000", cfg.Tolerance.String())
	assert.Equal(t, "1234", cfg.Position)

	require.NoError(t, fs.Set("tolerance", "-5"))
	_, err = LoadVerify("", fs)
	assert.Error(t, err)

	require.NoError(t, fs.Set("tolerance", "0"))
	require.NoError(t, fs.Set("rpc", ""))
	_, err = LoadVerify("", fs)
	assert.ErrorContains(t, err, "rpc")
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"", 0, false},
		{"1700000000", 1700000000, false},
		{" 1700000000 ", 1700000000, false},
		{"2024-01-01T00:00:00Z", 1704067200, false},
		{"2024-01-01", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimestamp(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
