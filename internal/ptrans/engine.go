package ptrans

import "sync"

// Engine guards the shared Graph with a single mutex across the
// inject -> search/trace -> clear cycle of one request (spec.md §5's
// reference concurrency design: "a process-wide lock around the shared
// engine, held for the duration of one request"). WithRequest is the
// scoped-resource helper: it acquires the lock, runs the caller's closure
// against the live graph, and always clears every key it injected via
// defer, so a panic or an early return can never leak a shadow edge into
// the next request.
type Engine struct {
	mu sync.Mutex
	g  *Graph

	shadowNodes       []string
	shadowAdjAppended map[string]int
	shadowEdgeDetail  []edgeKey
	shadowTimeTable   []edgeKey
}

// NewEngine wraps a loaded base Graph.
func NewEngine(base *Graph) *Engine {
	return &Engine{
		g:                 base,
		shadowAdjAppended: make(map[string]int),
	}
}

// WithRequest locks the engine, runs fn against the shared graph, and
// clears every key fn injected before unlocking — regardless of whether fn
// returns an error.
func (e *Engine) WithRequest(fn func(*Engine) error) error {
	e.mu.Lock()
	defer func() {
		e.clear()
		e.mu.Unlock()
	}()
	return fn(e)
}

// InjectNode adds a node for the duration of the current request.
// Must be called from inside WithRequest.
func (e *Engine) InjectNode(n TransitNode) {
	e.g.addNode(n)
	e.shadowNodes = append(e.shadowNodes, n.NodeID)
}

// InjectEdge adds one directed edge (and, if tt is non-nil, its timetable)
// for the duration of the current request. Must be called from inside
// WithRequest.
func (e *Engine) InjectEdge(from, to string, travelTimeMin float64, kind EdgeKind, polyline, displayName string, tt *TimeTable) {
	e.g.addEdge(from, to, travelTimeMin, kind, polyline, displayName, tt)
	e.shadowAdjAppended[from]++
	key := edgeKey{From: from, To: to}
	e.shadowEdgeDetail = append(e.shadowEdgeDetail, key)
	if tt != nil {
		e.shadowTimeTable = append(e.shadowTimeTable, key)
	}
}

// Graph exposes the live graph for read operations (Search, Trace,
// FindNearest) inside a WithRequest closure.
func (e *Engine) Graph() *Graph { return e.g }

// clear removes exactly what this request injected, restoring the shared
// graph to its pre-request contents (invariant: Graph.NodeCount() and
// Graph.EdgeCount() equal their pre-request values once clear returns).
func (e *Engine) clear() {
	for node, n := range e.shadowAdjAppended {
		list := e.g.adjacency[node]
		if n > len(list) {
			n = len(list)
		}
		trimmed := list[:len(list)-n]
		if len(trimmed) == 0 {
			delete(e.g.adjacency, node)
		} else {
			e.g.adjacency[node] = trimmed
		}
	}
	for _, id := range e.shadowNodes {
		delete(e.g.nodes, id)
	}
	for _, k := range e.shadowEdgeDetail {
		delete(e.g.edgeDetail, k)
	}
	for _, k := range e.shadowTimeTable {
		delete(e.g.timeTable, k)
	}

	e.shadowNodes = nil
	e.shadowAdjAppended = make(map[string]int)
	e.shadowEdgeDetail = nil
	e.shadowTimeTable = nil
}
