package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/infobot/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "infobot dev (local)"), out)
}

func TestValidateEmbeddedBundle(t *testing.T) {
	out, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded bundle: ok")
	assert.Contains(t, out, "countries: 195 (10 pages of 20)")
	assert.Contains(t, out, "topics: 10")
	assert.Contains(t, out, "screens checked: 23")
}

func TestValidateRejectsBadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: T\ntopics:\n  items:\n    - {key: weather, title: W, description: d}\n"), 0o600))
	_, err := execute(t, "validate", "--content", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an addressable topic")

	_, err = execute(t, "validate", "--page-size", "0")
	assert.Error(t, err)
}

func TestLoadConfigReturnsAppConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BOT_TOKEN", "t")
	carrier, err := loadConfig("")
	require.NoError(t, err)
	cfg, ok := carrier.(*config.Config)
	require.True(t, ok)
	assert.Equal(t, "t", cfg.CoreConfig().Telegram.Token)

	t.Setenv("BOT_TOKEN", "")
	_, err = loadConfig("")
	assert.Error(t, err)
}
