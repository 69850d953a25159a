// Package reaper implements spec.md 4.G: reaping exited children without
// doing state-machine work from inside a signal handler.
//
// Go's os/signal already gives us the safe equivalent of the classic
// self-pipe trick - SIGCHLD delivery lands on a buffered channel, not a
// C-style signal handler - so the only remaining care is draining with
// syscall.Wait4(-1, ..., WNOHANG, ...) in a loop, since one SIGCHLD can
// coalesce several exits.
package reaper

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// pidLookup is the subset of *supervisor.Engine the reaper depends on.
type pidLookup interface {
	Lookup(pid int) (name string, generation uint64, ok bool)
}

// notifier is the subset of *supervisor.Engine the reaper reports exits
// to.
type notifier interface {
	NotifyExit(name string, generation uint64, pid int)
}

// Run blocks, reaping exited children and notifying engine, until ctx
// is cancelled. It should run in its own goroutine, started before
// Bootstrap so no exit is ever missed.
func Run(ctx context.Context, pids pidLookup, engine notifier, logger *zap.SugaredLogger) {
	sigCh := make(chan os.Signal, 16)
	signal.Notify(sigCh, syscall.SIGCHLD)
	defer signal.Stop(sigCh)

	drain(pids, engine, logger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			drain(pids, engine, logger)
		}
	}
}

// drain calls wait4(WNOHANG) until no more children are immediately
// reapable, tagging each exit with the job name/generation the pid
// table has on record. A pid the table doesn't recognize was never
// ours (or was already reaped under a prior generation) and is
// silently discarded, per spec.md invariant 3.
func drain(pids pidLookup, engine notifier, logger *zap.SugaredLogger) {
	var status syscall.WaitStatus
	for {
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err != nil {
			if err == syscall.ECHILD {
				return
			}
			if err == syscall.EINTR {
				continue
			}
			logger.Warnw("wait4 failed", "error", err)
			return
		}
		if pid <= 0 {
			return
		}

		name, generation, ok := pids.Lookup(pid)
		if !ok {
			continue
		}
		engine.NotifyExit(name, generation, pid)
	}
}
