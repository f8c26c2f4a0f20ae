package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	assert.NoError(os.WriteFile(path, []byte("data_directory: /tmp/sqldata\nlog_level: debug\n"), 0644))

	config, err := LoadConfig(path)
	assert.NoError(err)
	assert.Equal("/tmp/sqldata", config.DataDir)
	assert.Equal("debug", config.LogLevel)
	assert.Equal(logrus.DebugLevel, config.logLevel())
}

func TestLoadConfig_Defaults(t *testing.T) {
	assert := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yml")
	assert.NoError(os.WriteFile(path, []byte("{}\n"), 0644))

	config, err := LoadConfig(path)
	assert.NoError(err)
	assert.NotEmpty(config.DataDir)
	assert.Equal(logrus.InfoLevel, config.logLevel())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	assert := require.New(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(err)
}
