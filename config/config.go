// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines the configuration of the assetd daemon.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "ASSETD"

	HTTPHostKey           = "http-host"
	HTTPPortKey           = "http-port"
	AllowedOriginsKey     = "http-allowed-origins"
	ShutdownTimeoutKey    = "http-shutdown-timeout"
	ReadHeaderTimeoutKey  = "http-read-header-timeout"
	JournalDirKey         = "journal-dir"
	AttributeCacheSizeKey = "attribute-cache-size"
	MinimumBalanceKey     = "minimum-balance"
	FaucetEnabledKey      = "faucet-enabled"
)

var (
	errInvalidPort            = errors.New("http port must be between 0 and 65535")
	errInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	errInvalidCacheSize       = errors.New("attribute cache size must be positive")
	errInvalidMinimumBalance  = errors.New("invalid minimum balance")
)

// Config contains configuration parameters for the daemon.
type Config struct {
	// HTTPHost is the interface the API listens on
	HTTPHost string `json:"httpHost"`
	// HTTPPort is the port the API listens on. 0 picks a free port.
	HTTPPort int `json:"httpPort"`
	// AllowedOrigins are the CORS origins the API accepts
	AllowedOrigins []string `json:"allowedOrigins"`

	ShutdownTimeout   time.Duration `json:"shutdownTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`

	// JournalDir stores the event journal. Empty keeps events in memory.
	JournalDir string `json:"journalDir"`

	// AttributeCacheSize is the number of attribute values each collection
	// keeps cached
	AttributeCacheSize int `json:"attributeCacheSize"`

	// MinimumBalance is the smallest non-zero native balance, in decimal
	MinimumBalance string `json:"minimumBalance"`

	// FaucetEnabled allows host.fund to issue native value
	FaucetEnabled bool `json:"faucetEnabled"`
}

// DefaultConfig returns the default configuration of the daemon.
func DefaultConfig() Config {
	return Config{
		HTTPHost:           "127.0.0.1",
		HTTPPort:           9650,
		AllowedOrigins:     []string{"*"},
		ShutdownTimeout:    10 * time.Second,
		ReadHeaderTimeout:  30 * time.Second,
		JournalDir:         "",
		AttributeCacheSize: 1024,
		MinimumBalance:     "0",
		FaucetEnabled:      false,
	}
}

// AddFlags registers every config key on fs with its default value.
func AddFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.String(HTTPHostKey, d.HTTPHost, "Address of the HTTP server")
	fs.Int(HTTPPortKey, d.HTTPPort, "Port of the HTTP server")
	fs.StringSlice(AllowedOriginsKey, d.AllowedOrigins, "Origins to allow on the HTTP port")
	fs.Duration(ShutdownTimeoutKey, d.ShutdownTimeout, "Maximum duration to wait for existing connections to complete during shutdown")
	fs.Duration(ReadHeaderTimeoutKey, d.ReadHeaderTimeout, "Maximum duration to read request headers")
	fs.String(JournalDirKey, d.JournalDir, "Directory of the event journal. Empty keeps events in memory")
	fs.Int(AttributeCacheSizeKey, d.AttributeCacheSize, "Number of attribute values cached per collection")
	fs.String(MinimumBalanceKey, d.MinimumBalance, "Smallest non-zero native balance an account may keep")
	fs.Bool(FaucetEnabledKey, d.FaucetEnabled, "Allow host.fund to issue native value")
}

// NewViper returns a viper bound to fs and to ASSETD_ prefixed environment
// variables.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// Load reads the config from v and verifies it.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		HTTPHost:           v.GetString(HTTPHostKey),
		HTTPPort:           v.GetInt(HTTPPortKey),
		AllowedOrigins:     v.GetStringSlice(AllowedOriginsKey),
		ShutdownTimeout:    v.GetDuration(ShutdownTimeoutKey),
		ReadHeaderTimeout:  v.GetDuration(ReadHeaderTimeoutKey),
		JournalDir:         v.GetString(JournalDirKey),
		AttributeCacheSize: v.GetInt(AttributeCacheSizeKey),
		MinimumBalance:     v.GetString(MinimumBalanceKey),
		FaucetEnabled:      v.GetBool(FaucetEnabledKey),
	}
	return c, c.Verify()
}

func (c Config) Verify() error {
	switch {
	case c.HTTPPort < 0 || c.HTTPPort > 65535:
		return fmt.Errorf("%w: %d", errInvalidPort, c.HTTPPort)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: %s", errInvalidShutdownTimeout, c.ShutdownTimeout)
	case c.AttributeCacheSize <= 0:
		return fmt.Errorf("%w: %d", errInvalidCacheSize, c.AttributeCacheSize)
	}
	_, err := c.Minimum()
	return err
}

// Minimum parses MinimumBalance. An empty value is zero.
func (c Config) Minimum() (*uint256.Int, error) {
	if c.MinimumBalance == "" {
		return new(uint256.Int), nil
	}
	minimum, err := uint256.FromDecimal(c.MinimumBalance)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidMinimumBalance, c.MinimumBalance, err)
	}
	return minimum, nil
}

// Address is the host:port the API listens on.
func (c Config) Address() string {
	return net.JoinHostPort(c.HTTPHost, strconv.Itoa(c.HTTPPort))
}
