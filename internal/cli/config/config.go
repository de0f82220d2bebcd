// Package config loads dynagen CLI configuration from dynagen.yml with
// environment variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the dynagen configuration.
type Config struct {
	SchemaPath string       `mapstructure:"schema_path"`
	Language   string       `mapstructure:"language"`
	Output     OutputConfig `mapstructure:"output"`
}

// OutputConfig controls where generated sources are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load loads the configuration from dynagen.yml or dynagen.yaml.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("schema_path", "schema.json")
	v.SetDefault("language", "python")
	v.SetDefault("output.dir", "generated")

	// Set config name and paths
	v.SetConfigName("dynagen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("DYNAGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	switch strings.ToLower(config.Language) {
	case "python", "go":
		return nil
	default:
		return fmt.Errorf("invalid language %q: must be 'python' or 'go'", config.Language)
	}
}
