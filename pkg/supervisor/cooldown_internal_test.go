package supervisor

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCooldownQueuePopsEarliestFirst(t *testing.T) {
	q := cooldownQueue{}
	heap.Init(&q)

	heap.Push(&q, &cooldownEntry{name: "c", at: 30})
	heap.Push(&q, &cooldownEntry{name: "a", at: 10})
	heap.Push(&q, &cooldownEntry{name: "b", at: 20})

	var order []string
	for q.Len() > 0 {
		e := heap.Pop(&q).(*cooldownEntry)
		order = append(order, e.name)
	}

	require.Equal(t, []string{"a", "b", "c"}, order)
}
