package linkcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresCommand(t *testing.T) {
	c := &Cmd{}
	c.SetArgs(nil)
	require.Error(t, c.Validate())
}

func TestValidateRejectsUnknownCommand(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"frobnicate"})
	require.Error(t, c.Validate())
}

func TestValidateLinkRequiresFilesAndOutput(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"link"})
	require.Error(t, c.Validate())

	c2 := &Cmd{}
	c2.SetArgs([]string{"link", "a.bc"})
	require.Error(t, c2.Validate()) // missing -o

	c3 := &Cmd{Output: "out.bin"}
	c3.SetArgs([]string{"link", "a.bc"})
	require.NoError(t, c3.Validate())
}

func TestValidateDumpRequiresExactlyOneFile(t *testing.T) {
	c := &Cmd{}
	c.SetArgs([]string{"dump"})
	require.Error(t, c.Validate())

	c2 := &Cmd{}
	c2.SetArgs([]string{"dump", "a.bc", "b.bc"})
	require.Error(t, c2.Validate())

	c3 := &Cmd{}
	c3.SetArgs([]string{"dump", "a.bc"})
	require.NoError(t, c3.Validate())
}

func TestValidateSkipsDispatchForHelpAndVersion(t *testing.T) {
	c := &Cmd{Help: true}
	require.NoError(t, c.Validate())

	c2 := &Cmd{Version: true}
	require.NoError(t, c2.Validate())
}

func TestApplyConfigDefaultsFillsUnsetAOTModeFromFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("aot_mode: mono\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	c := &Cmd{}
	var stdout, stderr bytes.Buffer
	c.applyConfigDefaults(mainer.Stdio{Stdout: &stdout, Stderr: &stderr})
	require.Equal(t, "mono", c.AOTMode)
	require.Empty(t, stderr.String())
}

func TestApplyConfigDefaultsFillsGlobsAndWidthFromEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	t.Setenv("CILGEN_ARCHIVE_GLOB", "*.rlib")
	t.Setenv("CILGEN_OBJECT_GLOB", "*.bc")
	t.Setenv("CILGEN_POINTER_WIDTH", "4")
	t.Setenv("CILGEN_ABORT_ON_ERROR", "true")

	c := &Cmd{}
	var stdout, stderr bytes.Buffer
	c.applyConfigDefaults(mainer.Stdio{Stdout: &stdout, Stderr: &stderr})
	require.Equal(t, "*.rlib", c.ArchiveGlob)
	require.Equal(t, "*.bc", c.ObjectGlob)
	require.Equal(t, 4, c.PointerWidth)
	require.True(t, c.AbortOnError)
}

func TestApplyConfigDefaultsLeavesExplicitFlagAlone(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("aot_mode: mono\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	c := &Cmd{AOTMode: "mono_full"}
	var stdout, stderr bytes.Buffer
	c.applyConfigDefaults(mainer.Stdio{Stdout: &stdout, Stderr: &stderr})
	require.Equal(t, "mono_full", c.AOTMode)
}
