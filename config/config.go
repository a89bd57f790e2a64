package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kysee/phoenix-abi/zk-abi/abi"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is read from YAML by the tools that cross the boundary.
type Config struct {
	// ProofSize is the fixed size of proof blobs. It must match what the
	// proving backend produces and what the host reads.
	ProofSize int `yaml:"proof_size"`

	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`

	// HostModule is the wasm module name the host functions are exported under.
	HostModule string `yaml:"host_module"`
}

func Default() Config {
	return Config{
		ProofSize:  abi.ProofSizePlonk,
		LogLevel:   "info",
		HostModule: "phoenix",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ProofSize <= 0 {
		return fmt.Errorf("proof_size must be positive, got %d", c.ProofSize)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.HostModule == "" {
		return errors.New("host_module is empty")
	}
	return nil
}

func (c Config) ProofLayout() abi.ProofLayout {
	return abi.ProofLayout{Size: c.ProofSize}
}
