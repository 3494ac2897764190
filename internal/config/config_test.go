package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/makeup-recommender/internal/tone"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, BackendGRPC, cfg.Analyzer.Backend)
	assert.Equal(t, 30*time.Second, cfg.Analyzer.Timeout)
	assert.Equal(t, tone.DefaultThresholds(), cfg.Tone.Thresholds())
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.JWT.Secret)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MAKEUP_ANALYZER_BACKEND", "openai")
	t.Setenv("MAKEUP_OPENAI_API_KEY", "sk-test")
	t.Setenv("MAKEUP_TONE_FAIR_THRESHOLD", "0.7")
	t.Setenv("MAKEUP_HTTP_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, BackendOpenAI, cfg.Analyzer.Backend)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, 0.7, cfg.Tone.FairThreshold)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoadFlagsAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analyzer:\n  addr: analyzer.internal:9000\nlog:\n  level: debug\n"), 0o600))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--config", path, "--http.addr", ":9999"}))

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "analyzer.internal:9000", cfg.Analyzer.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Run("UnknownBackend", func(t *testing.T) {
		t.Setenv("MAKEUP_ANALYZER_BACKEND", "deepface")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("OpenAIWithoutKey", func(t *testing.T) {
		t.Setenv("MAKEUP_ANALYZER_BACKEND", "openai")
		_, err := Load(nil)
		assert.Error(t, err)
	})

	t.Run("InvertedThresholds", func(t *testing.T) {
		t.Setenv("MAKEUP_TONE_FAIR_THRESHOLD", "0.2")
		_, err := Load(nil)
		assert.ErrorIs(t, err, tone.ErrInvalidThresholds)
	})
}
