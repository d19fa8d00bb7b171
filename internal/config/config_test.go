package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

func TestParseEnvDefaults(t *testing.T) {
	cfg, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 10*time.Second, cfg.RemoteTimeout)
	assert.Zero(t, cfg.TurnSeconds)
	assert.Empty(t, cfg.OTelEndpoint)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("WARGAME_ADDR", ":9999")
	t.Setenv("WARGAME_REMOTE_TIMEOUT", "3s")
	t.Setenv("WARGAME_TURN_SECONDS", "120")
	t.Setenv("WARGAME_LOG_DEV", "true")

	cfg, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.RemoteTimeout)
	assert.Equal(t, 120, cfg.TurnSeconds)
	assert.True(t, cfg.LogDev)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("WARGAME_TURN_SECONDS", "soon")
	_, err := ParseEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("WARGAME_PUBLIC_URL=https://example.test\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WARGAME_PUBLIC_URL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", cfg.PublicURL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestParseRosterYAML(t *testing.T) {
	data := []byte(`
code: OPS001
mode: local
turn_seconds: 120
participants:
  - id: A
    name: Alpha
    team: blue
    director: true
  - id: B
    name: Bravo
    team: blue
  - id: C
    name: Charlie
    team: red
`)
	f, err := ParseRoster(data, false)
	require.NoError(t, err)
	cfg := f.SessionConfig()
	assert.Equal(t, models.ModeLocal, cfg.Mode)
	assert.Equal(t, 120, cfg.TurnSeconds)
	require.Len(t, cfg.Roster, 3)
	assert.True(t, cfg.Roster[0].IsDirector)
	assert.Equal(t, "Bravo", cfg.Roster[1].DisplayName)
	assert.Equal(t, models.TeamRed, cfg.Roster[2].Team)
}

func TestLoadRosterJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	body := `{"mode":"networked","participants":[{"id":"A","team":"blue"},{"id":"B","team":"red"}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	f, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, models.ModeNetworked, f.SessionConfig().Mode)

	_, err = ParseRoster([]byte(`participants: []`), false)
	assert.Error(t, err)
}
