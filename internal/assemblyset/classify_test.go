package assemblyset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyEntryIsAlwaysUser(t *testing.T) {
	assert.Equal(t, ClassUser, Classify("System.Private.CoreLib", true, true))
}

func TestClassifyBCLDirWins(t *testing.T) {
	assert.Equal(t, ClassBCL, Classify("Acme.Widgets", true, false))
}

func TestClassifyKnownSystemPrefixFallsBackToBCL(t *testing.T) {
	assert.Equal(t, ClassBCL, Classify("System.Collections", false, false))
	assert.Equal(t, ClassBCL, Classify("mscorlib", false, false))
}

func TestClassifyUnknownNameIsThirdParty(t *testing.T) {
	assert.Equal(t, ClassThirdParty, Classify("Newtonsoft.Json", false, false))
}

func TestProberPrefersAppDirOverBCLDir(t *testing.T) {
	appDir := t.TempDir()
	bclDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "Acme.dll"), []byte{0}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(bclDir, "Acme.dll"), []byte{0}, 0o644))

	p := &Prober{AppDir: appDir, BCLDir: bclDir}
	path, fromBCL, ok := p.Resolve("Acme")
	require.True(t, ok)
	assert.False(t, fromBCL)
	assert.Equal(t, filepath.Join(appDir, "Acme.dll"), path)
}

func TestProberFallsBackToBCLDir(t *testing.T) {
	appDir := t.TempDir()
	bclDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bclDir, "System.Runtime.dll"), []byte{0}, 0o644))

	p := &Prober{AppDir: appDir, BCLDir: bclDir}
	path, fromBCL, ok := p.Resolve("System.Runtime")
	require.True(t, ok)
	assert.True(t, fromBCL)
	assert.Equal(t, filepath.Join(bclDir, "System.Runtime.dll"), path)
}

func TestProberUnresolvedReturnsFalse(t *testing.T) {
	p := &Prober{AppDir: t.TempDir(), BCLDir: t.TempDir()}
	_, _, ok := p.Resolve("DoesNotExist")
	assert.False(t, ok)
}
