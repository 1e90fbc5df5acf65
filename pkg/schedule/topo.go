package schedule

import "container/heap"

// idHeap is a min-heap of issue ids. Kahn's algorithm pulls the smallest
// ready id first so ties among simultaneously-available nodes always break
// the same way, which keeps next/previous navigation and tests stable.
type idHeap []string

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(string)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoSort runs Kahn's algorithm. The second return is false when the order
// does not cover every node, which can only mean a cycle slipped past
// detection.
func (g *Graph) topoSort() ([]string, bool) {
	if len(g.Nodes) == 0 {
		return nil, true
	}

	inDegree := make(map[string]int, len(g.Nodes))
	for id := range g.Nodes {
		inDegree[id] = len(g.in[id])
	}

	ready := &idHeap{}
	for id, d := range inDegree {
		if d == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		for _, succ := range g.out[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				heap.Push(ready, succ)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, false
	}
	return order, true
}
