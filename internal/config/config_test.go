package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "hanamikoji_actions", cfg.Historian.Queue)
	assert.Equal(t, 100, cfg.Historian.BatchSize)
	assert.Equal(t, 6, cfg.Rules.HandSize)
	assert.Equal(t, 4, cfg.Rules.GeishaMajority)
	assert.True(t, cfg.Rules.SingleGeishaOffers)
	assert.True(t, cfg.Rules.DrawEachTurn)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9090
log:
  level: debug
redis:
  ttl: 30m
historian:
  batch_size: 10
  flush_interval: 250ms
rules:
  handSize: 5
  singleGeishaOffers: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("HANAMIKOJI_SERVER_PORT", "7070")
	t.Setenv("HANAMIKOJI_RULES_GEISHAMAJORITY", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 10, cfg.Historian.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Historian.FlushInterval)
	assert.Equal(t, 5, cfg.Rules.HandSize)
	assert.Equal(t, 5, cfg.Rules.GeishaMajority)
	assert.False(t, cfg.Rules.SingleGeishaOffers)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"HANAMIKOJI_STORE_BACKEND": "mongo"}},
		{"postgres without url", map[string]string{"HANAMIKOJI_STORE_BACKEND": "postgres"}},
		{"hand size", map[string]string{"HANAMIKOJI_RULES_HANDSIZE": "11"}},
		{"majority", map[string]string{"HANAMIKOJI_RULES_GEISHAMAJORITY": "0"}},
		{"batch size", map[string]string{"HANAMIKOJI_HISTORIAN_BATCH_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	_, err = LogConfig{Level: "loud"}.NewLogger()
	assert.Error(t, err)
}
