package supervisor

import (
	"container/heap"
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/adamnew123456/jobmon/pkg/bus"
	"github.com/adamnew123456/jobmon/pkg/config"
	"github.com/adamnew123456/jobmon/pkg/job"
)

// Errors returned by the command dispatcher, per spec.md 4.E/7.
var (
	ErrUnknownJob      = errors.New("unknown job")
	ErrAlreadyRunning  = errors.New("already running")
	ErrAlreadyStopped  = errors.New("already stopped")
)

// SpawnError is re-exported so callers of this package don't need to
// import pkg/job to type-assert a failed start.
type SpawnError = job.SpawnError

// Engine is the command dispatcher plus job state machine: the single
// logical critical section spec.md 4.E requires. Every exported method
// is safe to call concurrently - each one hands a closure to the
// dispatch loop and waits for its result, so the loop itself never runs
// two closures at once.
type Engine struct {
	cfg       *config.Config
	jobs      map[string]*jobState
	pids      *pidTable
	bus       *bus.Bus
	logger    *zap.SugaredLogger
	daemonEnv []string

	loopCh  chan func(*Engine)
	timer   *time.Timer
	cooldownQ cooldownQueue
}

// New builds an Engine for cfg. Nothing is spawned yet; call Run in its
// own goroutine and then Bootstrap to inject the autostart jobs.
func New(cfg *config.Config, b *bus.Bus, logger *zap.SugaredLogger) *Engine {
	e := &Engine{
		cfg:       cfg,
		jobs:      make(map[string]*jobState, len(cfg.Jobs)),
		pids:      newPidTable(),
		bus:       b,
		logger:    logger,
		daemonEnv: os.Environ(),
		loopCh:    make(chan func(*Engine), 64),
		timer:     time.NewTimer(time.Hour),
	}
	if !e.timer.Stop() {
		<-e.timer.C
	}
	for name, jc := range cfg.Jobs {
		e.jobs[name] = &jobState{name: name, cfg: jc, phase: PhaseStopped}
	}
	return e
}

// PidTable exposes the live-child lookup table to the signal reaper.
func (e *Engine) PidTable() *pidTable { return e.pids }

// NotifyExit is the reaper's entry point into the dispatch loop: it
// reports that pid exited, already tagged with the job name and
// generation it was spawned under (spec.md 4.G). The exit status itself
// is not passed along.
// Safe to call from any goroutine; the actual state transition happens
// serialized inside the loop.
func (e *Engine) NotifyExit(name string, generation uint64, pid int) {
	e.loopCh <- func(eng *Engine) {
		eng.handleChildExited(name, generation, pid)
	}
}

// Run drives the dispatch loop until ctx is cancelled. It is the only
// place job state, the pid table, and the event bus are mutated.
func (e *Engine) Run(ctx context.Context) {
	for {
		var timerC <-chan time.Time
		if len(e.cooldownQ) > 0 {
			next := e.cooldownQ[0]
			d := time.Until(time.Unix(0, next.at))
			if d < 0 {
				d = 0
			}
			if !e.timer.Stop() {
				select {
				case <-e.timer.C:
				default:
				}
			}
			e.timer.Reset(d)
			timerC = e.timer.C
		}

		select {
		case fn := <-e.loopCh:
			fn(e)
		case <-timerC:
			e.fireDueCooldowns()
		case <-ctx.Done():
			return
		}
	}
}

// Bootstrap injects a synthetic start-request for every autostart job,
// per spec.md 4.C. Must be called before the control socket is opened.
func (e *Engine) Bootstrap() {
	names := e.sortedNames()
	respCh := make(chan struct{}, 1)
	e.loopCh <- func(eng *Engine) {
		for _, name := range names {
			j := eng.jobs[name]
			if !j.cfg.Autostart {
				continue
			}
			if err := eng.doSpawn(j); err != nil {
				eng.logger.Warnw("autostart failed", "job", name, "error", err)
			}
		}
		respCh <- struct{}{}
	}
	<-respCh
}

func (e *Engine) sortedNames() []string {
	names := make([]string, 0, len(e.cfg.Jobs))
	for name := range e.cfg.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// enqueue runs fn inside the dispatch loop and blocks until it
// completes.
func (e *Engine) enqueue(fn func(*Engine)) {
	done := make(chan struct{})
	e.loopCh <- func(eng *Engine) {
		fn(eng)
		close(done)
	}
	<-done
}

// Start handles the "start" command (spec.md 4.E).
func (e *Engine) Start(name string) error {
	var result error
	e.enqueue(func(eng *Engine) {
		j, ok := eng.jobs[name]
		if !ok {
			result = ErrUnknownJob
			return
		}
		switch j.phase {
		case PhaseRunning:
			result = ErrAlreadyRunning
		case PhaseCooldownPending:
			eng.cancelCooldown(j)
			result = eng.doSpawn(j)
		case PhaseStopped:
			result = eng.doSpawn(j)
		}
	})
	return result
}

// Stop handles the "stop" command (spec.md 4.E).
func (e *Engine) Stop(name string) error {
	var result error
	e.enqueue(func(eng *Engine) {
		j, ok := eng.jobs[name]
		if !ok {
			result = ErrUnknownJob
			return
		}
		switch j.phase {
		case PhaseStopped:
			result = ErrAlreadyStopped
		case PhaseCooldownPending:
			// No RUNNING was ever published for the respawn this
			// cancels, so no STOPPED is published either.
			eng.cancelCooldown(j)
			j.phase = PhaseStopped
		case PhaseRunning:
			if j.stopRequested {
				result = ErrAlreadyStopped
				return
			}
			j.stopRequested = true
			if err := job.Signal(j.pid, j.cfg.StopSignal); err != nil {
				eng.logger.Warnw("signal failed", "job", name, "pid", j.pid, "error", err)
			}
		}
	})
	return result
}

// Status handles the "status" command.
func (e *Engine) Status(name string) (string, error) {
	var phase string
	var err error
	e.enqueue(func(eng *Engine) {
		j, ok := eng.jobs[name]
		if !ok {
			err = ErrUnknownJob
			return
		}
		phase = j.phase.External()
	})
	return phase, err
}

// ListJobs handles the "list-jobs" command, returning entries sorted by
// name (spec.md 4.C, 9 - insertion vs alphabetical resolved to
// alphabetical for a stable, trivially testable order).
func (e *Engine) ListJobs() []JobStatus {
	var out []JobStatus
	e.enqueue(func(eng *Engine) {
		names := eng.sortedNames()
		out = make([]JobStatus, 0, len(names))
		for _, name := range names {
			out = append(out, JobStatus{Name: name, Phase: eng.jobs[name].phase.External()})
		}
	})
	return out
}

// Subscribe registers a new event-bus subscription filtered on
// nameFilter ("" for every job). Used by the event socket frontend,
// which has no need for dispatch-loop ordering the way Wait does.
func (e *Engine) Subscribe(nameFilter string) *bus.Subscription {
	return e.bus.Subscribe(nameFilter)
}

// Unsubscribe removes a subscription registered via Subscribe.
func (e *Engine) Unsubscribe(sub *bus.Subscription) {
	e.bus.Unsubscribe(sub)
}

// IsKnown reports whether name is a configured job.
func (e *Engine) IsKnown(name string) bool {
	var known bool
	e.enqueue(func(eng *Engine) {
		_, known = eng.jobs[name]
	})
	return known
}

// Wait handles the "wait" command: it registers a single-shot
// subscription filtered on name from inside the dispatch loop (so its
// registration is correctly ordered against concurrent requests, per
// spec.md 5's ordering guarantee), then blocks outside the loop for the
// next matching record.
func (e *Engine) Wait(ctx context.Context, name string) (bus.Record, error) {
	type subResult struct {
		sub *bus.Subscription
		err error
	}
	resCh := make(chan subResult, 1)
	e.enqueue(func(eng *Engine) {
		if _, ok := eng.jobs[name]; !ok {
			resCh <- subResult{err: ErrUnknownJob}
			return
		}
		resCh <- subResult{sub: eng.bus.Subscribe(name)}
	})

	r := <-resCh
	if r.err != nil {
		return bus.Record{}, r.err
	}
	defer e.bus.Unsubscribe(r.sub)
	return r.sub.Recv(ctx)
}

// doSpawn spawns j's child and transitions it to Running, publishing
// RUNNING. On failure, j stays Stopped and no event is published - the
// caller (Start, a cooldown fire, or Bootstrap) surfaces/logs the error.
func (e *Engine) doSpawn(j *jobState) error {
	// The pid table stays locked from the spawn until the pid is
	// registered, so a reaper that collects a fast-exiting child blocks
	// in Lookup until the entry exists instead of discarding the exit.
	e.pids.mu.Lock()
	pid, err := job.Spawn(j.cfg, e.daemonEnv)
	if err != nil {
		e.pids.mu.Unlock()
		j.phase = PhaseStopped
		e.logger.Warnw("spawn failed", "job", j.name, "error", err)
		return err
	}

	j.generation++
	j.pid = pid
	j.phase = PhaseRunning
	j.stopRequested = false
	e.pids.entries[pid] = pidEntry{name: j.name, generation: j.generation}
	e.pids.mu.Unlock()

	e.bus.Publish(bus.Record{Job: j.name, Status: "RUNNING", Time: time.Now()})
	return nil
}

// handleChildExited is the state machine's reaction to a child-exited
// event (spec.md 4.C), run inside the dispatch loop.
func (e *Engine) handleChildExited(name string, generation uint64, pid int) {
	e.pids.remove(pid)

	j, ok := e.jobs[name]
	if !ok || j.generation != generation || j.phase != PhaseRunning {
		// Stale reap: either the job is gone, or this pid belonged to
		// a generation that has already been superseded.
		return
	}

	now := time.Now()

	if j.stopRequested {
		j.phase = PhaseStopped
		j.stopRequested = false
		e.bus.Publish(bus.Record{Job: name, Status: "STOPPED", Time: now})
		return
	}

	result, newLastExit := job.Decide(j.cfg.Restart, j.lastExitTime, j.hasLastExit, now)
	j.lastExitTime = newLastExit
	j.hasLastExit = true

	switch result.Decision {
	case job.DoNotRespawn:
		j.phase = PhaseStopped
		e.bus.Publish(bus.Record{Job: name, Status: "STOPPED", Time: now})

	case job.RespawnImmediately:
		e.bus.Publish(bus.Record{Job: name, Status: "STOPPED", Time: now})
		if err := e.doSpawn(j); err != nil {
			// doSpawn already logged and left j Stopped.
		}

	case job.Defer:
		e.bus.Publish(bus.Record{Job: name, Status: "STOPPED", Time: now})
		j.phase = PhaseCooldownPending
		j.cooldownUntil = result.Until
		heap.Push(&e.cooldownQ, &cooldownEntry{name: name, at: result.Until.UnixNano(), generation: j.generation})
	}
}

// cancelCooldown bumps j's generation so any already-scheduled cooldown
// wake for it is discarded as stale when it fires (see fireDueCooldowns).
func (e *Engine) cancelCooldown(j *jobState) {
	j.generation++
}

func (e *Engine) fireDueCooldowns() {
	now := time.Now().UnixNano()
	for len(e.cooldownQ) > 0 && e.cooldownQ[0].at <= now {
		entry := heap.Pop(&e.cooldownQ).(*cooldownEntry)
		j, ok := e.jobs[entry.name]
		if !ok || j.phase != PhaseCooldownPending || j.generation != entry.generation {
			continue
		}
		if err := e.doSpawn(j); err != nil {
			// already logged; job remains Stopped.
		}
	}
}
