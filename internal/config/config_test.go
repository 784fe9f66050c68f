package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.GetBaseURL())
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, "session.yaml", cfg.GetSessionFile())
	assert.Equal(t, dateindex.PolicyWindow, cfg.GetRangePolicy())
	assert.True(t, cfg.GetFilterByLocation())
	assert.Equal(t, ":8080", cfg.GetAddr())
	assert.Equal(t, []string{"*"}, cfg.GetCORSOrigins())
	assert.Equal(t, 5*time.Minute, cfg.GetCacheTTL())
	assert.Equal(t, "energyviz", cfg.GetTopicPrefix())

	start, end := cfg.GetDateBounds()
	assert.Equal(t, "2023-01-01", start)
	assert.Equal(t, "2025-04-08", end)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
api:
  base_url: https://energy.example.com
  timeout_seconds: 5
dashboard:
  start_date: "2025-01-01"
  end_date: "2025-01-31"
  range_policy: full
  filter_by_location: false
server:
  addr: 127.0.0.1:9000
  cors_origins: ["http://localhost:5173"]
mqtt:
  enabled: true
  broker: localhost:1883
  topic_prefix: home/energy
session_file: /tmp/energyviz/session.yaml
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://energy.example.com", cfg.GetBaseURL())
	assert.Equal(t, 5*time.Second, cfg.GetTimeout())
	assert.Equal(t, dateindex.PolicyFull, cfg.GetRangePolicy())
	assert.False(t, cfg.GetFilterByLocation())
	assert.Equal(t, "127.0.0.1:9000", cfg.GetAddr())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.GetCORSOrigins())
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "home/energy", cfg.GetTopicPrefix())
	assert.Equal(t, "/tmp/energyviz/session.yaml", cfg.GetSessionFile())

	ix, r, err := cfg.BuildDateIndex()
	require.NoError(t, err)
	assert.Equal(t, 31, ix.Len())
	assert.Equal(t, ix.Full(), r)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dashboard:\n  range_policy: latest\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestBuildDateIndexDefaultWindow(t *testing.T) {
	cfg := &Config{}
	ix, r, err := cfg.BuildDateIndex()
	require.NoError(t, err)

	start, end := ix.Bounds(r)
	assert.Equal(t, "2025-01-01", start)
	assert.Equal(t, "2025-04-08", end)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{API: APIConfig{BaseURL: "http://api:8000"}}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api:8000", loaded.GetBaseURL())
}
