package roadnet

import (
	"math"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/geo"
)

// overlapRelaxationWindow is the number of most-recently-visited nodes that
// may be revisited when the strict constrained search finds no path — the
// "20-node overlap relaxation" heuristic of spec.md §4.C / §9, grounded on
// original_source/prometheus/car_searcher.py's find_route_through_nodes
// (visited_nodes[0:-20]).
const overlapRelaxationWindow = 20

// roadSpeedMPerMin is derived from spec.md §3's fixed 40 km/h travel speed.
const roadSpeedMPerMin = 40000.0 / 60.0

// FindRouteThroughStops resolves each stop to its nearest road node and
// builds the non-self-overlapping circular route visiting them in order,
// returning one Section per leg (the last leg closes the loop back to the
// first stop).
func (g *Graph) FindRouteThroughStops(stops []Stop) ([]Section, error) {
	if len(stops) == 0 {
		return nil, apperr.New(apperr.MalformedInput, "stops must be non-empty")
	}

	nodeSeq := make([]int64, 0, len(stops)+1)
	for _, s := range stops {
		n, err := g.FindNearest(s.Coord)
		if err != nil {
			return nil, err
		}
		nodeSeq = append(nodeSeq, n)
	}
	nodeSeq = append(nodeSeq, nodeSeq[0]) // close the loop

	visitedList := []int64{}
	visitedSet := map[int64]bool{}
	sections := make([]Section, 0, len(stops))

	for i := 0; i < len(nodeSeq)-1; i++ {
		start, goal := nodeSeq[i], nodeSeq[i+1]

		path, dist, ok := g.dijkstra(start, goal, visitedSet)
		if !ok {
			relaxed := relaxExcluded(visitedSet, visitedList)
			path, dist, ok = g.dijkstra(start, goal, relaxed)
			if !ok {
				return nil, apperr.New(apperr.RouteUnreachable, "no path between nodes %d and %d", start, goal)
			}
		}

		sections = append(sections, g.traceSection(path, dist))

		for _, n := range path[1:] {
			visitedSet[n] = true
		}
		visitedList = append(visitedList, path[1:]...)
	}

	return sections, nil
}

// relaxExcluded returns a copy of excluded with the final
// overlapRelaxationWindow nodes of visitedList removed, allowing the retry
// dijkstra to reuse a short local overlap to escape a dead end.
func relaxExcluded(excluded map[int64]bool, visitedList []int64) map[int64]bool {
	cut := len(visitedList) - overlapRelaxationWindow
	if cut < 0 {
		cut = 0
	}
	allowed := make(map[int64]bool, len(visitedList)-cut)
	for _, n := range visitedList[cut:] {
		allowed[n] = true
	}

	relaxed := make(map[int64]bool, len(excluded))
	for n := range excluded {
		if !allowed[n] {
			relaxed[n] = true
		}
	}
	return relaxed
}

// traceSection converts a node-id path and its total distance into a
// Section: duration rounds half-away-from-zero to the nearest minute at the
// fixed road speed, and the polyline is built from the path's node
// coordinates in order.
func (g *Graph) traceSection(path []int64, distanceM float64) Section {
	coords := make([]geo.Coord, len(path))
	for i, id := range path {
		coords[i] = g.nodes[id].Coord
	}

	durationMin := int(math.Floor(distanceM/roadSpeedMPerMin + 0.5))

	return Section{
		DistanceM:   distanceM,
		DurationMin: durationMin,
		Polyline:    geo.EncodePolyline(coords),
	}
}
