// Package job owns the lifecycle of a single child process: opening its
// stdio, spawning it under /bin/sh -c, and delivering signals to it. It
// has no concurrency of its own - every function here is a blocking
// helper invoked from the dispatch loop.
package job

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/adamnew123456/jobmon/pkg/config"
)

// SpawnError wraps a failure to open stdio or to fork/exec the child.
// The dispatcher returns it to the caller and logs it at WARN; the job
// remains Stopped.
type SpawnError struct {
	Op  string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn: %s: %v", e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Spawn opens the job's stdio files, builds its environment (the
// daemon's own environment overlaid by the job's env map, overlay
// winning), and forks/execs `/bin/sh -c <command>` in cfg.Cwd. On
// success it returns the child's pid; the stdio files are closed in this
// process immediately after hand-off, per spec.
//
// The returned process is a bare pid: nothing in this package calls
// Wait on it. Reaping is the signal reaper's job (see pkg/reaper), so
// that all exits funnel through the self-pipe, not through a
// per-process goroutine blocked in Wait.
func Spawn(cfg config.JobConfig, daemonEnv []string) (int, error) {
	stdin, err := os.Open(cfg.Stdin)
	if err != nil {
		return 0, &SpawnError{Op: "open stdin", Err: err}
	}
	defer stdin.Close()

	stdout, err := os.OpenFile(cfg.Stdout, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return 0, &SpawnError{Op: "open stdout", Err: err}
	}
	defer stdout.Close()

	stderr, err := os.OpenFile(cfg.Stderr, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return 0, &SpawnError{Op: "open stderr", Err: err}
	}
	defer stderr.Close()

	attr := &os.ProcAttr{
		Dir:   cfg.Cwd,
		Env:   mergeEnv(daemonEnv, cfg.Env),
		Files: []*os.File{stdin, stdout, stderr},
		Sys:   &syscall.SysProcAttr{Setsid: true},
	}

	proc, err := os.StartProcess("/bin/sh", []string{"/bin/sh", "-c", cfg.Command}, attr)
	if err != nil {
		return 0, &SpawnError{Op: "start", Err: err}
	}

	return proc.Pid, nil
}

// Signal sends signo to pid. A process that has already exited (racing
// with the reaper) is not an error - the spec tolerates that race.
func Signal(pid int, signo syscall.Signal) error {
	err := syscall.Kill(pid, signo)
	if err == syscall.ESRCH {
		return nil
	}
	return err
}

func mergeEnv(daemonEnv []string, overlay map[string]string) []string {
	merged := make(map[string]string, len(daemonEnv)+len(overlay))
	for _, kv := range daemonEnv {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	for k, v := range overlay {
		merged[k] = v
	}

	env := make([]string, 0, len(merged))
	for k, v := range merged {
		env = append(env, k+"="+v)
	}
	return env
}
