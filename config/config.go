// Package config loads the service configuration from TOML.
package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/BurntSushi/toml"

	"lendvault/crypto"
	"lendvault/native/lending"
)

// RateLimit bounds how fast a single client may hit the gateway.
type RateLimit struct {
	RequestsPerMinute int `toml:"RequestsPerMinute"`
	Burst             int `toml:"Burst"`
}

// Config is the top-level service configuration.
type Config struct {
	ListenAddress    string            `toml:"ListenAddress"`
	MetricsAddress   string            `toml:"MetricsAddress"`
	Environment      string            `toml:"Environment"`
	TreasuryAddress  string            `toml:"TreasuryAddress"`
	CollateralTokens []string          `toml:"CollateralTokens"`
	LendingTokens    []string          `toml:"LendingTokens"`
	RateLimit        RateLimit         `toml:"RateLimit"`
	Lending          lending.Config    `toml:"lending"`
	Prices           map[string]string `toml:"prices"`
}

// Default returns the configuration used when no file overrides are present.
func Default() Config {
	return Config{
		ListenAddress:  ":8680",
		MetricsAddress: ":9480",
		Environment:    "dev",
		RateLimit: RateLimit{
			RequestsPerMinute: 600,
			Burst:             30,
		},
	}
}

// Load reads the TOML file at path on top of the defaults and validates the
// result. An empty path returns the validated defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must not be empty")
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("config: rate limit values must not be negative")
	}
	if strings.TrimSpace(c.TreasuryAddress) != "" {
		if _, err := crypto.DecodeAddress(c.TreasuryAddress); err != nil {
			return fmt.Errorf("config: TreasuryAddress: %w", err)
		}
	}
	for token, raw := range c.Prices {
		if _, err := parsePrice(raw); err != nil {
			return fmt.Errorf("config: price for %s: %w", token, err)
		}
	}
	return nil
}

// Treasury resolves the configured treasury address, or the given fallback
// when unset.
func (c Config) Treasury(fallback crypto.Address) (crypto.Address, error) {
	if strings.TrimSpace(c.TreasuryAddress) == "" {
		return fallback, nil
	}
	return crypto.DecodeAddress(c.TreasuryAddress)
}

// SeedPrices returns the configured price seeds as integers keyed by token.
func (c Config) SeedPrices() (map[string]*big.Int, error) {
	seeds := make(map[string]*big.Int, len(c.Prices))
	for token, raw := range c.Prices {
		price, err := parsePrice(raw)
		if err != nil {
			return nil, fmt.Errorf("config: price for %s: %w", token, err)
		}
		seeds[strings.ToUpper(strings.TrimSpace(token))] = price
	}
	return seeds, nil
}

func parsePrice(raw string) (*big.Int, error) {
	price, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", raw)
	}
	if price.Sign() <= 0 {
		return nil, fmt.Errorf("must be positive: %q", raw)
	}
	return price, nil
}
