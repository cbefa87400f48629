// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)

	v, err := NewViper(newFlags(t))
	require.NoError(err)
	c, err := Load(v)
	require.NoError(err)
	require.Equal(DefaultConfig(), c)
	require.Equal("127.0.0.1:9650", c.Address())
}

func TestLoadPrecedence(t *testing.T) {
	require := require.New(t)

	t.Setenv("ASSETD_HTTP_PORT", "9000")
	t.Setenv("ASSETD_FAUCET_ENABLED", "true")
	t.Setenv("ASSETD_MINIMUM_BALANCE", "5")

	v, err := NewViper(newFlags(t, "--http-port=9100", "--journal-dir=/tmp/events"))
	require.NoError(err)
	c, err := Load(v)
	require.NoError(err)

	// an explicit flag wins over the environment
	require.Equal(9100, c.HTTPPort)
	require.Equal("/tmp/events", c.JournalDir)
	require.True(c.FaucetEnabled)
	minimum, err := c.Minimum()
	require.NoError(err)
	require.Equal(uint64(5), minimum.Uint64())
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{
			name:   "default",
			modify: func(*Config) {},
		},
		{
			name:   "port",
			modify: func(c *Config) { c.HTTPPort = 70000 },
			want:   errInvalidPort,
		},
		{
			name:   "shutdown timeout",
			modify: func(c *Config) { c.ShutdownTimeout = -time.Second },
			want:   errInvalidShutdownTimeout,
		},
		{
			name:   "cache size",
			modify: func(c *Config) { c.AttributeCacheSize = 0 },
			want:   errInvalidCacheSize,
		},
		{
			name:   "minimum balance",
			modify: func(c *Config) { c.MinimumBalance = "ten" },
			want:   errInvalidMinimumBalance,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig()
			test.modify(&c)
			require.ErrorIs(t, c.Verify(), test.want)
		})
	}
}
