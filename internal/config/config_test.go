package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	e, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, "*.rlib", e.ArchiveGlob)
	require.Equal(t, 8, e.PointerWidth)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CILGEN_POINTER_WIDTH", "4")
	e, err := LoadEnv()
	require.NoError(t, err)
	require.Equal(t, 4, e.PointerWidth)
}

func TestLoadFileMissingIsZeroValue(t *testing.T) {
	f, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, File{}, f)
}

func TestLoadFileParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cilgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("archive_glob: \"*.a\"\npointer_width: 4\n"), 0o644))

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "*.a", f.ArchiveGlob)
	require.Equal(t, 4, f.PointerWidth)
}

func TestMergeFilePriority(t *testing.T) {
	e := Env{ArchiveGlob: "*.rlib", PointerWidth: 8}
	f := File{ArchiveGlob: "*.a"}
	m := Merge(e, f)
	require.Equal(t, "*.a", m.ArchiveGlob)
	require.Equal(t, 8, m.PointerWidth) // file didn't set it, env value survives
}
