package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config carries the daemon settings loaded from the TOML file.
type Config struct {
	ListenAddress string  `toml:"ListenAddress"`
	DataDir       string  `toml:"DataDir"`
	NetworkName   string  `toml:"NetworkName"`
	OwnerAddress  string  `toml:"OwnerAddress"`
	MaxBatchSize  uint64  `toml:"MaxBatchSize"`
	ReviewCap     uint64  `toml:"ReviewCap"`
	RatePerMinute float64 `toml:"RatePerMinute"`
	RateBurst     int     `toml:"RateBurst"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress: "127.0.0.1:8651",
		DataDir:       "./honeytrace-data",
		NetworkName:   "honeytrace-local",
		RatePerMinute: 120,
		RateBurst:     30,
	}
}

// Load reads the configuration from the given path, writing a default file
// when none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants the daemon relies on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must not be empty")
	}
	owner := strings.TrimSpace(c.OwnerAddress)
	if owner == "" {
		return fmt.Errorf("config: OwnerAddress required")
	}
	if !strings.HasPrefix(owner, "0x") || len(owner) != 42 {
		return fmt.Errorf("config: OwnerAddress must be a 0x-prefixed 20-byte hex address")
	}
	if strings.TrimSpace(c.NetworkName) == "" {
		c.NetworkName = "honeytrace-local"
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, fmt.Errorf("config: wrote default file to %s; set OwnerAddress before starting", path)
}
