package di

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"journey-harness/internal/domain/entity"
	"journey-harness/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	return Config{
		BaseURL:      "http://127.0.0.1:8080/",
		ArtifactsDir: t.TempDir(),
		Log:          logger.Config{Path: filepath.Join(t.TempDir(), "browser.log"), Level: "debug"},
		Session:      entity.DefaultSessionConfig(),
		Out:          &bytes.Buffer{},
		Now:          time.Date(2020, 7, 6, 10, 0, 0, 0, time.Local),
	}
}

func TestNewContainer_BundledJourneys(t *testing.T) {
	c, err := NewContainer(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{
		"sign-up",
		"sign-up-then-login",
		"sign-up-then-quit",
		"plan-index",
		"entry-reservation",
		"reserve-confirm",
		"reserve-complete",
	}, c.Catalog.IDs())

	sc, ok := c.Catalog.Get("plan-index")
	require.True(t, ok)
	assert.Equal(t, "http://127.0.0.1:8080/ja/", sc.Steps[0].Value)
}

func TestNewContainer_JourneysDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "smoke.yaml"), []byte(
		"id: smoke\nsteps:\n  - navigate: ${BASE_URL}/\n"), 0644))

	cfg := testConfig(t)
	cfg.JourneysDir = dir
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, []string{"smoke"}, c.Catalog.IDs())
}

func TestNewContainer_BadLogLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Log.Level = "loud"

	_, err := NewContainer(cfg)
	assert.Error(t, err)
}

func TestNewContainer_BadJourneysDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.JourneysDir = t.TempDir()

	_, err := NewContainer(cfg)
	assert.ErrorContains(t, err, "no journeys found")
}
