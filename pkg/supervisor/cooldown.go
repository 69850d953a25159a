package supervisor

import "container/heap"

// cooldownEntry is one scheduled wake for a CooldownPending job. The
// generation recorded at schedule time lets the dispatch loop discard a
// wake that has been superseded by a cancel (start/stop-request) or by
// another crash before the timer fired - the same staleness trick the
// pid table uses for reaps.
type cooldownEntry struct {
	name       string
	at         int64 // UnixNano, for heap ordering without importing time in the heap itself
	generation uint64
	index      int
}

type cooldownQueue []*cooldownEntry

func (q cooldownQueue) Len() int            { return len(q) }
func (q cooldownQueue) Less(i, j int) bool  { return q[i].at < q[j].at }
func (q cooldownQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *cooldownQueue) Push(x any) {
	e := x.(*cooldownEntry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *cooldownQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return e
}

var _ heap.Interface = (*cooldownQueue)(nil)
