package roadnet

import "container/heap"

// pqItem is one entry of the Dijkstra priority queue. seq records insertion
// order so that equal-cost ties break by insertion order, per spec.md
// §4.C ("Ties on cost are broken by insertion order into the heap"),
// following the teacher's internal/routing/astar.go PriorityQueue shape.
type pqItem struct {
	node int64
	cost float64
	seq  int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].seq < pq[j].seq
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(*pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs a constrained shortest path from start to goal, skipping any
// neighbour present in excluded. Returns the node-id path (inclusive of
// start and goal) and its total distance in metres. ok is false if no path
// exists.
func (g *Graph) dijkstra(start, goal int64, excluded map[int64]bool) (path []int64, distance float64, ok bool) {
	if start == goal {
		return []int64{start}, 0, true
	}

	dist := map[int64]float64{start: 0}
	prev := map[int64]int64{}

	pq := &priorityQueue{{node: start, cost: 0, seq: 0}}
	heap.Init(pq)
	seq := 1

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		u := item.node

		if bestCost, seen := dist[u]; seen && item.cost > bestCost {
			continue // stale entry
		}

		if u == goal {
			return reconstructPath(prev, start, goal), dist[goal], true
		}

		for _, e := range g.outEdges[u] {
			if excluded[e.To] {
				continue
			}
			newCost := dist[u] + e.Distance
			if existing, seen := dist[e.To]; !seen || newCost < existing {
				dist[e.To] = newCost
				prev[e.To] = u
				heap.Push(pq, &pqItem{node: e.To, cost: newCost, seq: seq})
				seq++
			}
		}
	}

	return nil, 0, false
}

func reconstructPath(prev map[int64]int64, start, goal int64) []int64 {
	path := []int64{goal}
	node := goal
	for node != start {
		node = prev[node]
		path = append(path, node)
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
