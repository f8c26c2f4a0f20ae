package engine

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const defaultDataDir = ".sql"

// Config describes the configuration for the database engine.
type Config struct {
	DataDir  string `yaml:"data_directory"`
	LogLevel string `yaml:"log_level"`
}

// LoadConfig reads engine configuration from a yaml file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config := &Config{}
	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, defaultDataDir)
		}
	}
}

func (c *Config) logLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
