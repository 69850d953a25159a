package job_test

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adamnew123456/jobmon/pkg/config"
	"github.com/adamnew123456/jobmon/pkg/job"
)

func waitExit(t *testing.T, pid int) syscall.WaitStatus {
	t.Helper()
	var status syscall.WaitStatus
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := syscall.Wait4(pid, &status, syscall.WNOHANG, nil)
		if err != nil {
			t.Fatalf("wait4: %v", err)
		}
		if got == pid {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for pid %d", pid)
	return status
}

func TestSpawnRunsCommandWithOverlayEnv(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out")

	cfg := config.JobConfig{
		Name:       "echo-env",
		Command:    "echo \"$GREETING\"",
		Stdin:      os.DevNull,
		Stdout:     outPath,
		Stderr:     os.DevNull,
		Env:        map[string]string{"GREETING": "hello"},
		Cwd:        dir,
		StopSignal: syscall.SIGTERM,
	}

	pid, err := job.Spawn(cfg, os.Environ())
	require.NoError(t, err)

	status := waitExit(t, pid)
	require.True(t, status.Exited())
	require.Equal(t, 0, status.ExitStatus())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, "hello\n", string(data))
}

func TestSpawnOpenFailureIsSpawnError(t *testing.T) {
	cfg := config.JobConfig{
		Name:       "bad-stdin",
		Command:    "true",
		Stdin:      "/does/not/exist",
		Stdout:     os.DevNull,
		Stderr:     os.DevNull,
		StopSignal: syscall.SIGTERM,
	}

	_, err := job.Spawn(cfg, os.Environ())
	require.Error(t, err)

	var spawnErr *job.SpawnError
	require.ErrorAs(t, err, &spawnErr)
	require.Equal(t, "open stdin", spawnErr.Op)
}

func TestSignalToleratesAlreadyExitedProcess(t *testing.T) {
	cfg := config.JobConfig{
		Name:       "quick-exit",
		Command:    "true",
		Stdin:      os.DevNull,
		Stdout:     os.DevNull,
		Stderr:     os.DevNull,
		StopSignal: syscall.SIGTERM,
	}

	pid, err := job.Spawn(cfg, os.Environ())
	require.NoError(t, err)
	waitExit(t, pid)

	require.NoError(t, job.Signal(pid, syscall.SIGTERM))
}
