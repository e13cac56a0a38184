package nav

import "container/heap"

// frontierNode is one open-set entry. g is the cost recorded when the entry
// was pushed; entries are never mutated in place, so g can go stale when a
// cheaper route to the same cell is found later.
type frontierNode struct {
	cell Cell
	g    float64
	f    float64
}

// frontier is a min-heap of open-set entries ordered by f = g + h.
// Improvements push a duplicate entry instead of decreasing a key; stale
// entries are skipped at pop time.
type frontier struct {
	nodes []frontierNode
}

func (q frontier) Len() int            { return len(q.nodes) }
func (q frontier) Less(i, j int) bool  { return q.nodes[i].f < q.nodes[j].f }
func (q frontier) Swap(i, j int)       { q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i] }

func (q *frontier) Push(x interface{}) {
	q.nodes = append(q.nodes, x.(frontierNode))
}

func (q *frontier) Pop() interface{} {
	old := q.nodes
	n := len(old)
	x := old[n-1]
	q.nodes = old[:n-1]
	return x
}

func (q *frontier) push(n frontierNode) {
	heap.Push(q, n)
}

func (q *frontier) pop() frontierNode {
	return heap.Pop(q).(frontierNode)
}
