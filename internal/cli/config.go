package cli

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig holds CLI defaults read from the process environment.
// Explicit flags always override environment values; the environment
// only fills in what the command line left unset.
type EnvConfig struct {
	// RulesDir points at a rule pack directory that replaces the
	// embedded pack, same as --rules.
	RulesDir string `env:"SQLSAGE_RULES_DIR" env-default:""`

	// Format selects the default output format, same as --format.
	Format string `env:"SQLSAGE_FORMAT" env-default:""`

	// Verbose enables diagnostic output, same as --verbose.
	Verbose bool `env:"SQLSAGE_VERBOSE" env-default:"false"`
}

// ReadEnvConfig reads CLI defaults from the environment.
func ReadEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment config: %w", err)
	}
	return &cfg, nil
}
