package ptrans

import (
	"sort"

	"github.com/coins-dawn/prometheus/internal/geo"
)

// nearestCandidate is one transit node ranked by walking distance from a
// query coordinate.
type nearestCandidate struct {
	NodeID    string
	WalkMin   float64
	DistanceM float64
}

// FindNearest returns the k transit nodes closest to coord by straight-line
// distance, converted to walking minutes at walkSpeedMPerMin. This is
// component E's own linear scan (distinct from roadnet's mesh-indexed
// lookup): the transit stop set is small enough that a full scan per
// request is the original's actual strategy (original_source/prometheus/
// ptrans/network.py's find_nearest_nodes).
func (g *Graph) FindNearest(coord geo.Coord, k int, walkSpeedMPerMin float64) []nearestCandidate {
	candidates := make([]nearestCandidate, 0, len(g.nodes))
	for id, n := range g.nodes {
		if id == StartNodeID || id == GoalNodeID {
			continue
		}
		d := geo.HaversineMFloat(coord, n.Coord)
		candidates = append(candidates, nearestCandidate{NodeID: id, DistanceM: d, WalkMin: d / walkSpeedMPerMin})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].DistanceM < candidates[j].DistanceM })
	if k < len(candidates) {
		candidates = candidates[:k]
	}
	return candidates
}

// InjectAnchors adds the START and GOAL sentinel nodes and their walk edges
// to/from the k nearest real transit nodes (spec.md §4.E's add_anchors):
// START -> nearest-to-origin nodes, and nearest-to-destination nodes ->
// GOAL. Must be called from inside an Engine.WithRequest closure.
func (e *Engine) InjectAnchors(startCoord, goalCoord geo.Coord, k int, walkSpeedMPerMin float64) {
	e.InjectNode(TransitNode{NodeID: StartNodeID, Name: "start", Coord: startCoord})
	e.InjectNode(TransitNode{NodeID: GoalNodeID, Name: "goal", Coord: goalCoord})

	for _, c := range e.g.FindNearest(startCoord, k, walkSpeedMPerMin) {
		e.InjectEdge(StartNodeID, c.NodeID, c.WalkMin, Walk, "", "", nil)
	}
	for _, c := range e.g.FindNearest(goalCoord, k, walkSpeedMPerMin) {
		e.InjectEdge(c.NodeID, GoalNodeID, c.WalkMin, Walk, "", "", nil)
	}
}
