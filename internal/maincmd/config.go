package maincmd

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// ToolchainConfig holds the VM tuning knobs `run` applies before invoking
// lang/machine (`build` accepts --config but does not read it, since it
// never starts the VM): the step and call-stack budgets, and
// whether syscalls outside the sandboxed subset are rejected outright.
// Defaults come first, then an optional snow.toolchain.yaml sidecar
// overrides them, then SNOW_* environment variables win last.
type ToolchainConfig struct {
	MaxSteps          int  `yaml:"max_steps" env:"SNOW_MAX_STEPS"`
	MaxCallStackDepth int  `yaml:"max_call_stack_depth" env:"SNOW_MAX_CALL_STACK_DEPTH"`
	SandboxSyscalls   bool `yaml:"sandbox_syscalls" env:"SNOW_SANDBOX_SYSCALLS"`
}

func defaultToolchainConfig() ToolchainConfig {
	return ToolchainConfig{
		MaxSteps:          10_000_000,
		MaxCallStackDepth: 1024,
	}
}

// loadToolchainConfig reads path (if non-empty and present) as a YAML
// sidecar, then applies SNOW_* environment overrides on top.
func loadToolchainConfig(path string) (ToolchainConfig, error) {
	cfg := defaultToolchainConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("%s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("reading SNOW_* environment overrides: %w", err)
	}
	return cfg, nil
}
