package latency

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds access latency values for the emulated card.
// Values model a cheap SD card in SPI mode.
type Config struct {
	// BlockRead is the stall before the first byte of a single-block
	// read transfer, modeling seek/setup delay. Default: 30ms.
	BlockRead time.Duration `json:"block_read_latency"`
}

// DefaultConfig returns a Config with the reference latency values.
func DefaultConfig() *Config {
	return &Config{
		BlockRead: 30 * time.Millisecond,
	}
}

// LoadConfig loads a Config from a JSON file. Durations are given in
// nanoseconds.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read latency config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse latency config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize latency config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write latency config file: %w", err)
	}

	return nil
}

// Validate checks that all latency values are non-negative.
func (c *Config) Validate() error {
	if c.BlockRead < 0 {
		return fmt.Errorf("block_read_latency must be >= 0")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	return &Config{
		BlockRead: c.BlockRead,
	}
}
