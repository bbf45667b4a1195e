// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	Commitment          string        `mapstructure:"commitment"`
	PrivateKey          string        `mapstructure:"private_key"`
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
	ComputeUnitLimit    uint32        `mapstructure:"compute_unit_limit"`
	ComputeUnitPrice    uint64        `mapstructure:"compute_unit_price"`
	SlippagePercent     float64       `mapstructure:"slippage_percent"`
	LogFile             string        `mapstructure:"log_file"`
	DebugLogging        bool          `mapstructure:"debug_logging"`
}

const (
	DefaultRPCURL              = "https://api.mainnet-beta.solana.com"
	DefaultCommitment          = "confirmed"
	DefaultConfirmationTimeout = 30 * time.Second
	DefaultComputeUnitLimit    = 200_000
	DefaultComputeUnitPrice    = 333_333
	DefaultSlippagePercent     = 1.0
	DefaultLogFile             = "logs/easysol.log"
)

// LoadConfig reads path, layering environment variables over the file and
// defaults under both. A missing file falls back to defaults and
// environment variables alone.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_url":              DefaultRPCURL,
		"commitment":           DefaultCommitment,
		"confirmation_timeout": DefaultConfirmationTimeout,
		"compute_unit_limit":   DefaultComputeUnitLimit,
		"compute_unit_price":   DefaultComputeUnitPrice,
		"slippage_percent":     DefaultSlippagePercent,
		"log_file":             DefaultLogFile,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.RPCURL == "" {
		return errors.New("missing rpc_url in configuration")
	}
	if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
		return errors.New("invalid RPC URL protocol")
	}
	switch cfg.Commitment {
	case "processed", "confirmed", "finalized":
	default:
		return errors.New("commitment must be processed, confirmed or finalized")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ConfirmationTimeout <= 0 {
		return errors.New("invalid confirmation_timeout")
	}
	if cfg.SlippagePercent < 0 {
		return errors.New("invalid slippage_percent")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("EASY_SOLANA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envRPCURL := v.GetString("RPC_URL")
	if envRPCURL != "" {
		cfg.RPCURL = envRPCURL
	}

	envPrivateKey := v.GetString("PRIVATE_KEY")
	if envPrivateKey != "" {
		cfg.PrivateKey = envPrivateKey
	}

	envCommitment := v.GetString("COMMITMENT")
	if envCommitment != "" {
		cfg.Commitment = strings.ToLower(strings.TrimSpace(envCommitment))
	}
	return nil
}
