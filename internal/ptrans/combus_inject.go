package ptrans

import "github.com/coins-dawn/prometheus/internal/geo"

// CombusEdgeInput is the shape the combus package's bridge output is
// translated into before injection — ptrans stays independent of the
// combus package so the dependency only runs one way (combus -> ptrans).
type CombusEdgeInput struct {
	From        string
	To          string
	DurationMin float64
	DisplayName string
	Polyline    string
	TimeTable   TimeTable
}

// InjectCombus adds a freshly built combus line's nodes and single/multi-leg
// edges to the live graph, then derives WALK edges between every newly
// minted combus node and every other transit node (combus nodes included)
// within maxWalkMinutes at walkSpeedMPerMin (spec.md §4.E's add_combus:
// "computes walk edges from every combus node to every existing transit
// node within 10 minutes' walk", grounded on original_source/prometheus/
// ptrans/ptrans_searcher.py's _add_car_output_to_graph walk-edge sweep).
// Must be called from inside Engine.WithRequest.
func (e *Engine) InjectCombus(nodes []TransitNode, edges []CombusEdgeInput, walkSpeedMPerMin, maxWalkMinutes float64) {
	for _, n := range nodes {
		e.InjectNode(n)
		for _, other := range e.g.NodeIDs() {
			if other == n.NodeID {
				continue
			}
			otherNode, ok := e.g.Node(other)
			if !ok {
				continue
			}
			distM := geo.HaversineMFloat(n.Coord, otherNode.Coord)
			walkMin := distM / walkSpeedMPerMin
			if walkMin >= maxWalkMinutes {
				continue
			}
			e.InjectEdge(other, n.NodeID, walkMin, Walk, "", "", nil)
			e.InjectEdge(n.NodeID, other, walkMin, Walk, "", "", nil)
		}
	}
	for _, edge := range edges {
		tt := edge.TimeTable
		e.InjectEdge(edge.From, edge.To, edge.DurationMin, Combus, edge.Polyline, edge.DisplayName, &tt)
	}
}
