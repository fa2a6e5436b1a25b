package tracker

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen string `yaml:"listen"`

	PositionPollSeconds  int `yaml:"position_poll_seconds"`
	MetadataSweepSeconds int `yaml:"metadata_sweep_seconds"`

	// Positions with a parsed latitude below this are implausible for the
	// feed's coverage area and skipped.
	MinimumLatitude float64 `yaml:"minimum_latitude"`

	CategoryFilter   string `yaml:"category_filter"`
	FilterExpression string `yaml:"filter_expression"`

	// Deep-link train ident to focus once on first sighting.
	FocusTrain string `yaml:"focus_train"`
}

func DefaultConfig() Config {
	return Config{
		Listen: "localhost:8338",

		PositionPollSeconds:  5,
		MetadataSweepSeconds: 30,

		MinimumLatitude: 50,

		CategoryFilter: "all",
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	yamlBytes, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(yamlBytes, &config); err != nil {
		return config, err
	}

	return config, nil
}

func (c Config) PositionPollInterval() time.Duration {
	return time.Duration(c.PositionPollSeconds) * time.Second
}

func (c Config) MetadataSweepInterval() time.Duration {
	return time.Duration(c.MetadataSweepSeconds) * time.Second
}
