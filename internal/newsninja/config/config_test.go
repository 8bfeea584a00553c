package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "github.com/RobinCoderZhao/newsninja/pkg/config"
)

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "ELEVEN_API_KEY", "BRIGHTDATA_API_KEY", "BRIGHTDATA_WEB_UNLOCKER_ZONE", "NEWSNINJA_TIERS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.Equal(t, 200*time.Millisecond, cfg.Sources.AdmitEvery.Std())
	assert.Equal(t, 3, cfg.Sources.Attempts)
	assert.Equal(t, "gemini:gemini-1.5-flash", cfg.Synthesis.Tiers[0])
	assert.Equal(t, 24*time.Hour, cfg.Audio.Retention.Std())
	assert.Equal(t, 3*time.Minute, cfg.Timeouts.Aggregate.Std())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearCredentials(t)
	path := filepath.Join(t.TempDir(), "newsninja.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
audio:
  output_dir: /tmp/nn-audio
  retention: 2h
synthesis:
  tiers: ["ollama:llama3.2"]
`), 0o644))

	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("NEWSNINJA_TIERS", "gemini:gemini-1.5-flash, ollama:llama3.2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/tmp/nn-audio", cfg.Audio.OutputDir)
	assert.Equal(t, 2*time.Hour, cfg.Audio.Retention.Std())
	assert.Equal(t, "g-key", cfg.Credentials.GeminiAPIKey)
	assert.Equal(t, []string{"gemini:gemini-1.5-flash", "ollama:llama3.2"}, cfg.Synthesis.Tiers)
	// untouched sections keep defaults
	assert.Equal(t, 40, cfg.Synthesis.TopK)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearCredentials(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Synthesis.Tiers = nil
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sources.Attempts = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Audio.SweepInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "audio.sweep_interval")

	cfg = Default()
	cfg.Audio.SweepInterval = pkgconfig.Duration(-time.Minute)
	assert.ErrorContains(t, cfg.Validate(), "audio.sweep_interval")

	cfg = Default()
	cfg.Audio.Retention = 0
	assert.ErrorContains(t, cfg.Validate(), "audio.retention")
}

func TestLoad_RejectsZeroSweepInterval(t *testing.T) {
	clearCredentials(t)
	path := filepath.Join(t.TempDir(), "newsninja.yaml")
	require.NoError(t, os.WriteFile(path, []byte("audio:\n  sweep_interval: 0s\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "audio.sweep_interval")
}

func TestMissingCredentials(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"GEMINI_API_KEY", "ELEVEN_API_KEY", "BRIGHTDATA_API_KEY", "BRIGHTDATA_WEB_UNLOCKER_ZONE"}, cfg.MissingCredentials())

	cfg.Credentials = Credentials{GeminiAPIKey: "g", ElevenAPIKey: "e", BrightDataAPIKey: "b"}
	assert.Equal(t, []string{"BRIGHTDATA_WEB_UNLOCKER_ZONE"}, cfg.MissingCredentials())

	cfg.Credentials.BrightDataZone = "z"
	assert.Empty(t, cfg.MissingCredentials())
}
