package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNameCaseInsensitive(t *testing.T) {
	cfg, err := FromName("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, Debug, cfg)

	cfg, err = FromName("release")
	require.NoError(t, err)
	assert.Equal(t, Release, cfg)
}

func TestFromNameUnknown(t *testing.T) {
	_, err := FromName("turbo")
	require.Error(t, err)
}

func TestLoadOverrideMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadOverride(Release, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Release, cfg)
}

func TestLoadOverrideAppliesPartialFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cil2cpp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("is_debug: true\n"), 0o644))

	cfg, err := LoadOverride(Release, path)
	require.NoError(t, err)
	assert.True(t, cfg.IsDebug)
	assert.False(t, cfg.EmitLineDirectives)
}

func TestLoadOverrideMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cil2cpp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("is_debug: [this is not a bool\n"), 0o644))

	_, err := LoadOverride(Release, path)
	require.Error(t, err)
}
