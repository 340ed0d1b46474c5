package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, config{Lang: []string{"*"}, Dir: "mdmark-dump"}, cfg)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()

	data := "lang:\n  - go\n  - python\nquiet: true\ndir: out\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mdmark.yaml"), []byte(data), fileMode))

	cfg, err := loadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, []string{"go", "python"}, cfg.Lang)
	require.True(t, cfg.Quiet)
	require.False(t, cfg.Verbose)
	require.Equal(t, "out", cfg.Dir)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("MDMARK_VERBOSE", "true")
	t.Setenv("MDMARK_DIR", "from-env")

	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)

	require.True(t, cfg.Verbose)
	require.Equal(t, "from-env", cfg.Dir)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mdmark.yaml"), []byte("lang: [go\n"), fileMode))

	_, err := loadConfig(dir)
	require.ErrorContains(t, err, "reading config")
}

func TestRun_VerboseLogsParsedBlocks(t *testing.T) {
	name := writeWorkshop(t)

	_, stderr, err := run(t, "", "list", "-q", "-v", name)
	require.NoError(t, err)
	require.Contains(t, stderr, "parsed block")
	require.Contains(t, stderr, "title=index.js")
}
