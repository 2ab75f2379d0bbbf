package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 90*time.Second, cfg.WebSocket.ReadTimeout)
}

func TestLoadConfig_YAMLKeepsUnsetDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  port: "9090"
chat:
  maxMessageLength: 500
seed:
  file: seed.yaml
`))

	cfg := LoadConfig()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 500, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 50, cfg.Chat.PageSize)
	assert.Equal(t, "seed.yaml", cfg.Seed.File)
	assert.Equal(t, "event-social", cfg.JWT.Issuer)
}

func TestLoadConfig_MalformedYAMLFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server: [unclosed"))

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeConfig(t, "server:\n  port: \"9090\"\n"))
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("JWT_EXPIRE_TIME", "2h")
	t.Setenv("CHAT_PAGE_SIZE", "20")
	t.Setenv("SEED_FILE", "other.yaml")

	cfg := LoadConfig()
	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Database.Enabled)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 20, cfg.Chat.PageSize)
	assert.Equal(t, "other.yaml", cfg.Seed.File)
}
