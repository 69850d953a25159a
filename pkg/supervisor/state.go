// Package supervisor implements the job lifecycle engine: the per-job
// state machine (spec.md 4.C), the command dispatcher that serializes
// every external request against the job table (4.E), and the glue
// that ties the job runner, restart throttle, and event bus together
// into one dispatch loop (spec.md 5).
//
// This package is the direct descendant of the teacher repo's
// pkg/supervisor/supervisor.go: the same "one struct owns the whole
// process table, every mutating method takes the table lock" shape, but
// the process table's state has been replaced end to end with the
// Stopped/Running/CooldownPending state machine spec.md requires, and
// locking has been replaced by single-dispatch-loop serialization.
package supervisor

import (
	"time"

	"github.com/adamnew123456/jobmon/pkg/config"
)

// Phase is a job's lifecycle phase, per spec.md 3.
type Phase int

const (
	PhaseStopped Phase = iota
	PhaseRunning
	PhaseCooldownPending
)

// External renders the phase the way the wire protocol and CLI expect:
// CooldownPending is not a user-visible phase (spec.md 4.C), so it is
// reported the same as Stopped.
func (p Phase) External() string {
	if p == PhaseRunning {
		return "RUNNING"
	}
	return "STOPPED"
}

// jobState is one job's mutable state (spec.md 3). It is only ever
// touched from inside the dispatch loop.
type jobState struct {
	name string
	cfg  config.JobConfig

	phase Phase
	pid   int

	// stopRequested marks the "Stopped-pending-reap" sub-phase: a
	// stop-request has been issued and the signal sent, but the reap
	// has not yet arrived. Externally this still reports Running.
	// Internally, the next child-exited event for this generation is
	// treated as a deliberate stop rather than a crash, so a
	// restart-enabled job is not respawned out from under an operator
	// who just stopped it.
	stopRequested bool

	lastExitTime time.Time
	hasLastExit  bool

	cooldownUntil time.Time
	generation    uint64
}

// JobStatus is the externally-visible (name, phase) pair list-jobs and
// status report.
type JobStatus struct {
	Name  string
	Phase string
}
