package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
name: astrografia
host: 127.0.0.1
port: 5000
storage:
  db_type: sqlite
  db_path: test.db
auth:
  jwt_secret: secret
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, []string{"meeus", "approx"}, cfg.Ephemeris.Adapters)
	assert.Equal(t, "porphyry", cfg.Ephemeris.HouseSystem)
	assert.True(t, cfg.Ephemeris.WithPluto())
	assert.Equal(t, "template", cfg.Narrative.Provider)
	assert.Equal(t, "gpt-4o", cfg.Narrative.Model)
	assert.Equal(t, 400, cfg.Narrative.MaxTokens)
	assert.InDelta(t, 0.85, cfg.Narrative.Temperature, 1e-9)
	assert.Equal(t, 60, cfg.Auth.AccessTTLMinutes)
	assert.Equal(t, 30*24, int(cfg.RefreshTTL().Hours()))
}

func TestNewConfigReadsTOML(t *testing.T) {
	content := `
name = "astrografia"
host = "0.0.0.0"
port = 8081

[storage]
db_type = "sqlite"
db_path = "toml.db"

[ephemeris]
include_pluto = false
house_system = "whole_sign"

[auth]
jwt_secret = "s"
`
	cfg, err := NewConfig(writeFile(t, "config.toml", content))
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.False(t, cfg.Ephemeris.WithPluto())
	assert.Equal(t, "whole_sign", cfg.Ephemeris.HouseSystem)
}

func TestApplyEnvOverridesSecrets(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", minimalYAML))
	require.NoError(t, err)

	env := map[string]string{
		"ASTRO_JWT_SECRET":     "from-env",
		"ASTRO_EPHEMERIS_PATH": "/opt/vsop87",
	}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "/opt/vsop87", cfg.Ephemeris.EphemerisPath)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad port":         "name: a\nhost: h\nport: 80\nstorage: {db_type: sqlite, db_path: x}\nauth: {jwt_secret: s}\n",
		"unknown adapter":  "name: a\nhost: h\nport: 5000\nstorage: {db_type: sqlite, db_path: x}\nauth: {jwt_secret: s}\nephemeris: {adapters: [swiss]}\n",
		"missing secret":   "name: a\nhost: h\nport: 5000\nstorage: {db_type: sqlite, db_path: x}\n",
		"postgres no dsn":  "name: a\nhost: h\nport: 5000\nstorage: {db_type: postgres}\nauth: {jwt_secret: s}\n",
		"bad sky timezone": "name: a\nhost: h\nport: 5000\nstorage: {db_type: sqlite, db_path: x}\nauth: {jwt_secret: s}\nsky: {enabled: true, timezone: Invalid/Timezone}\n",
		"remote no url":    "name: a\nhost: h\nport: 5000\nstorage: {db_type: sqlite, db_path: x}\nauth: {jwt_secret: s}\nephemeris: {adapters: [remote]}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ASTRO_JWT_SECRET", "")
			_, err := NewConfig(writeFile(t, "config.yaml", content))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeFile(t, "config.yaml", minimalYAML))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.toml")
	require.NoError(t, cfg.Save(out))

	again, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Port, again.Port)
	assert.Equal(t, cfg.Storage.DBPath, again.Storage.DBPath)
}

func TestShippedDefaultConfigIsValid(t *testing.T) {
	t.Setenv("ASTRO_JWT_SECRET", "")
	_, err := NewConfig(filepath.Join("..", "..", "config", "default.yaml"))
	require.NoError(t, err)
}
