package config_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adamnew123456/jobmon/pkg/config"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLoadBasicConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
jobs:
  web:
    command: "./serve"
    autostart: true
    restart: true
    signal: USR1
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Supervisor.LogLevel)

	job, ok := cfg.Jobs["web"]
	require.True(t, ok)
	require.Equal(t, "./serve", job.Command)
	require.True(t, job.Autostart)
	require.True(t, job.Restart)
	require.Equal(t, syscall.SIGUSR1, job.StopSignal)
	require.Equal(t, os.DevNull, job.Stdout)
}

func TestLoadExpandsShellVariables(t *testing.T) {
	t.Setenv("JOBMON_TEST_DIR", "/srv/app")

	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
jobs:
  web:
    command: "$JOBMON_TEST_DIR/serve"
    cwd: "${JOBMON_TEST_DIR}"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/app/serve", cfg.Jobs["web"].Command)
	require.Equal(t, "/srv/app", cfg.Jobs["web"].Cwd)
}

func TestLoadMergesIncludesFirstDefinitionWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "extra.yml"), `
jobs:
  web:
    command: "should not win"
  worker:
    command: "./worker"
`)

	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
include:
  - extra.yml
jobs:
  web:
    command: "./serve"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "./serve", cfg.Jobs["web"].Command)
	require.Equal(t, "./worker", cfg.Jobs["worker"].Command)
}

func TestLoadRejectsEmptyCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
jobs:
  web:
    command: ""
`)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "command must not be empty")
}

func TestLoadRejectsUnknownSignal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
jobs:
  web:
    command: "./serve"
    signal: NOTASIGNAL
`)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown signal")
}

func TestLoadRequiresControlDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
jobs:
  web:
    command: "./serve"
`)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "control_dir is required")
}

func TestLoadRequiresAtLeastOneJob(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobmon.yml")
	writeFile(t, path, `
supervisor:
  control_dir: /tmp/jobmon
jobs: {}
`)

	_, err := config.Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no jobs defined")
}
