package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/ml"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// clearEnv blanks the overrides a developer shell may carry.
func clearEnv(t *testing.T) {
	for _, k := range []string{"REDIS_ADDR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "WATCHLIST", "SERVER_PORT", "DATA_PROVIDER"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "Close", cfg.Pipeline.DefaultTarget)
	assert.Equal(t, 0.01, cfg.Pipeline.ClassThreshold)
	assert.Equal(t, 1, cfg.Pipeline.DefaultHorizon)
	assert.Equal(t, 0, cfg.Cache.MaxEntries, "cache is unbounded unless configured")
	assert.Equal(t, 3, cfg.Model.Clusters)
	assert.Equal(t, ml.DefaultOptions(), cfg.ModelOptions())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"SPX500"}, cfg.Schedule.Watchlist)
	assert.False(t, cfg.TelegramEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
data_source:
  provider: rest
  base_url: http://bars.local
cache:
  max_entries: 64
  redis:
    addr: localhost:6379
    prefix: sl
pipeline:
  reduced_precision: true
schedule:
  watchlist: [AAPL]
`)
	clearEnv(t)
	t.Setenv("WATCHLIST", "msft, nvda")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, "sl", cfg.Cache.Redis.Prefix)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.True(t, cfg.Pipeline.ReducedPrecision)
	assert.Equal(t, []string{"MSFT", "NVDA"}, cfg.Schedule.Watchlist)
	assert.True(t, cfg.TelegramEnabled())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"unknown provider", "data_source:\n  provider: bloomberg\n", nil},
		{"rest without url", "data_source:\n  provider: rest\n", nil},
		{"redis without addr", "cache:\n  redis:\n    enabled: true\n", nil},
		{"half telegram", "", map[string]string{"TELEGRAM_BOT_TOKEN": "x"}},
		{"bad threshold", "pipeline:\n  class_threshold: -1\n", nil},
		{"too few clusters", "model:\n  clusters: 1\n", nil},
		{"negative kmeans iterations", "model:\n  kmeans_max_iter: -5\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestModelOptions_SeparateIterationCaps(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "model:\n  logistic_max_iter: 250\n"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	opts := cfg.ModelOptions()
	assert.Equal(t, 250, opts.LogisticMaxIter)
	assert.Equal(t, 300, opts.KMeansMaxIter, "k-means cap is unaffected")

	cfg, err = Load(writeConfig(t, "model:\n  kmeans_max_iter: 40\n"))
	require.NoError(t, err)
	opts = cfg.ModelOptions()
	assert.Equal(t, 1000, opts.LogisticMaxIter, "logistic cap is unaffected")
	assert.Equal(t, 40, opts.KMeansMaxIter)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}
