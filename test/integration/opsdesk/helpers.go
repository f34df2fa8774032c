package opsdesk

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "opsdesk"
	}

	// go test changes the CWD to the test package directory, relative paths would break.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("OPSDESK_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("opsdesk binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "OPSDESK_INTEGRATION"
		envBinary     = "OPSDESK_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{Binary: os.Getenv(envBinary)}
	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}
