package job

import "time"

// RapidWindow is the interval within which a second crash is considered
// "rapid" and triggers cooldown.
const RapidWindow = 5 * time.Second

// Cooldown is the minimum delay between a throttled crash and the next
// respawn attempt.
const Cooldown = 15 * time.Second

// Decision is the restart throttle's advisory verdict. The throttle
// never spawns anything itself - the state machine enacts the decision.
type Decision int

const (
	RespawnImmediately Decision = iota
	Defer
	DoNotRespawn
)

// ThrottleResult is the outcome of Decide: which Decision, and (for
// Defer) the absolute time the job becomes eligible to respawn.
type ThrottleResult struct {
	Decision Decision
	Until    time.Time
}

// Decide implements the restart throttle policy from spec.md 4.B. It is
// a pure function: the caller (the per-job state machine) owns
// lastExitTime and decides whether to update it from the second
// returned value (the new last-exit time).
func Decide(restart bool, lastExitTime time.Time, hasLastExit bool, now time.Time) (ThrottleResult, time.Time) {
	if !restart {
		return ThrottleResult{Decision: DoNotRespawn}, lastExitTime
	}

	if !hasLastExit || now.Sub(lastExitTime) > RapidWindow {
		return ThrottleResult{Decision: RespawnImmediately}, now
	}

	return ThrottleResult{Decision: Defer, Until: now.Add(Cooldown)}, now
}
