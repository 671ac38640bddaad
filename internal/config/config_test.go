package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load("")

	assert.Equal(t, "data/store", cfg.Store.Dir)
	assert.Equal(t, "queries", cfg.Queries.Dir)
	require.NotNil(t, cfg.Filter.MinPopularity)
	assert.Equal(t, 10, *cfg.Filter.MinPopularity)
	assert.Equal(t, 0, cfg.Filter.PerSource["arxiv"])
	assert.Equal(t, 20, cfg.HTTP.TimeoutSeconds)
	assert.Equal(t, 3, cfg.HTTP.RetryAttempts)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.Len(t, cfg.Sites, 2)
	assert.Equal(t, "hackernews", cfg.Sites[0].Scanner)
	assert.Equal(t, "arxiv", cfg.Sites[1].Scanner)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  dir: /var/lib/tracker
filter:
  minPopularity: 30
  perSource:
    arxiv: 0
logging:
  level: debug
sites:
  - name: hn-front-page
    scanner: hackernews
    options:
      hitsPerPage: "50"
`), 0o644))

	cfg := Load(path)

	assert.Equal(t, "/var/lib/tracker", cfg.Store.Dir)
	require.NotNil(t, cfg.Filter.MinPopularity)
	assert.Equal(t, 30, *cfg.Filter.MinPopularity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "queries", cfg.Queries.Dir, "unset sections keep defaults")
	assert.Equal(t, 3, cfg.HTTP.RetryAttempts)
	require.Len(t, cfg.Sites, 1, "an explicit site list replaces the default set")
	assert.Equal(t, "50", cfg.Sites[0].Options["hitsPerPage"])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  dir: from-file\n"), 0o644))

	t.Setenv("TOPIC_TRACKER_STORE_DIR", "from-env")
	t.Setenv("TOPIC_TRACKER_MIN_POPULARITY", "42")

	cfg := Load(path)
	assert.Equal(t, "from-env", cfg.Store.Dir)
	require.NotNil(t, cfg.Filter.MinPopularity)
	assert.Equal(t, 42, *cfg.Filter.MinPopularity)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	t.Setenv("TOPIC_TRACKER_MIN_POPULARITY", "lots")

	cfg := Load("")
	require.NotNil(t, cfg.Filter.MinPopularity)
	assert.Equal(t, 10, *cfg.Filter.MinPopularity)
}

func TestLoad_ExplicitZeroThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter:\n  minPopularity: 0\n"), 0o644))

	cfg := Load(path)
	require.NotNil(t, cfg.Filter.MinPopularity)
	assert.Equal(t, 0, *cfg.Filter.MinPopularity, "an explicit zero must not fall back to the default")
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, "data/store", cfg.Store.Dir)
	assert.Len(t, cfg.Sites, 2)
}
