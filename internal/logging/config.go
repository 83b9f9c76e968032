package logging

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds one console section, one file section, and a list of
// disabled log channels, read from a YAML file at startup.
type Config struct {
	Console struct {
		Enabled     bool   `yaml:"enabled"`
		MinLogLevel string `yaml:"minLogLevel"`
	} `yaml:"console"`

	File struct {
		Enabled           bool   `yaml:"enabled"`
		FilenameExtension string `yaml:"filenameExtension"`
	} `yaml:"file"`

	// Disabled lists LogMessageType names excluded from every sink, e.g.
	// ["MIGRATION"] to silence per-migration tracing in a long run.
	Disabled []string `yaml:"disabled"`
}

// DefaultConfig returns the configuration used when no YAML file is given:
// console logging enabled at INFO, file logging off, nothing disabled.
func DefaultConfig() Config {
	c := Config{}
	c.Console.Enabled = true
	c.Console.MinLogLevel = "info"
	return c
}

// LoadConfig reads and parses a YAML logging config file.
func LoadConfig(path string) (Config, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "logging: read config")
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, errors.Wrap(err, "logging: parse config")
	}
	return c, nil
}

func nameToType(name string) (LogMessageType, bool) {
	for i, n := range logMessageNames {
		if n == name {
			return LogMessageType(i), true
		}
	}
	return 0, false
}
