package supervisor

import "sync"

// pidEntry is one live child's bookkeeping: which job owns it, and at
// what generation it was spawned. spec.md invariant 3 requires every
// live pid to map back to exactly one job at exactly one generation;
// this table is that mapping.
type pidEntry struct {
	name       string
	generation uint64
}

// pidTable is written only from inside the dispatch loop (a single
// writer) but read concurrently by the signal reaper, which must
// correlate a bare pid to a job name and generation before it can
// tag and enqueue a child-exited event (spec.md 4.G).
type pidTable struct {
	mu      sync.Mutex
	entries map[int]pidEntry
}

func newPidTable() *pidTable {
	return &pidTable{entries: make(map[int]pidEntry)}
}

func (t *pidTable) put(pid int, name string, generation uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[pid] = pidEntry{name: name, generation: generation}
}

func (t *pidTable) remove(pid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, pid)
}

// Lookup returns the job name and generation a pid was last spawned
// under, for the reaper to tag a raw (pid, exit status) pair.
func (t *pidTable) Lookup(pid int) (name string, generation uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[pid]
	return e.name, e.generation, ok
}
