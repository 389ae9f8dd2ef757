package emulator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Emulator configuration, layered under the CLI flags. Loaded from an
// optional YAML file, by default gops2.yaml in the working directory
type Config struct {
	// Patch the BIOS to boot the disc executable directly
	FastBoot bool `yaml:"fastBoot"`

	// Run without a window
	Headless bool `yaml:"headless"`

	// Log executed instructions
	Trace bool `yaml:"trace"`

	// PS1 compatibility mode (parsed and recorded only)
	PSXMode bool `yaml:"psxMode"`
}

// Returns the default configuration
func DefaultConfig() *Config {
	return &Config{FastBoot: true}
}

// Loads the configuration file at `path`. A missing file yields the
// defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}
