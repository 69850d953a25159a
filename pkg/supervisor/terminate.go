package supervisor

import (
	"context"
	"syscall"
	"time"

	"github.com/adamnew123456/jobmon/pkg/bus"
	"github.com/adamnew123456/jobmon/pkg/job"
)

// DefaultShutdownDeadline is the single implementation-chosen deadline
// spec.md 4.E/5 allows graceful shutdown to pick before escalating to
// KILL.
const DefaultShutdownDeadline = 5 * time.Second

// Terminate implements graceful shutdown (spec.md 4.E): every Running
// job is sent its configured stop signal, we wait (up to deadline) for
// all of them to be reaped, escalate to SIGKILL on stragglers, and wait
// once more before giving up and returning. The caller is responsible
// for closing the listening sockets afterwards.
func (e *Engine) Terminate(ctx context.Context, deadline time.Duration) {
	if deadline <= 0 {
		deadline = DefaultShutdownDeadline
	}

	type prepared struct {
		pending map[string]struct{}
		sub     *bus.Subscription
	}
	resCh := make(chan prepared, 1)

	e.enqueue(func(eng *Engine) {
		pending := make(map[string]struct{})
		sub := eng.bus.Subscribe("")
		for name, j := range eng.jobs {
			switch j.phase {
			case PhaseRunning:
				if !j.stopRequested {
					j.stopRequested = true
					if err := job.Signal(j.pid, j.cfg.StopSignal); err != nil {
						eng.logger.Warnw("signal failed during shutdown", "job", name, "pid", j.pid, "error", err)
					}
				}
				pending[name] = struct{}{}
			case PhaseCooldownPending:
				eng.cancelCooldown(j)
				j.phase = PhaseStopped
			}
		}
		resCh <- prepared{pending: pending, sub: sub}
	})

	p := <-resCh
	defer e.bus.Unsubscribe(p.sub)

	e.drainUntilEmpty(ctx, p.sub, p.pending, deadline)
	if len(p.pending) == 0 {
		return
	}

	e.enqueue(func(eng *Engine) {
		for name := range p.pending {
			j, ok := eng.jobs[name]
			if !ok || j.phase != PhaseRunning {
				continue
			}
			eng.logger.Warnw("escalating to SIGKILL", "job", name, "pid", j.pid)
			_ = job.Signal(j.pid, syscall.SIGKILL)
		}
	})

	e.drainUntilEmpty(ctx, p.sub, p.pending, deadline)
}

func (e *Engine) drainUntilEmpty(ctx context.Context, sub *bus.Subscription, pending map[string]struct{}, deadline time.Duration) {
	if len(pending) == 0 {
		return
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for len(pending) > 0 {
		rec, err := sub.Recv(deadlineCtx)
		if err != nil {
			return
		}
		if rec.Status == "STOPPED" {
			delete(pending, rec.Job)
		}
	}
}
