package orchestrator

import (
	"fmt"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/ptrans"
)

// precomputedCombusDepartureTime is the fixed departure assumed for a
// candidate combus line built from already-selected stops rather than a
// freshly computed CarRoute (spec.md §4.F/§9's "reachability from combus
// stops uses fixed 10:00" modelling compromise, applied here too since
// /area/search never has a live circuit schedule to draw from).
const precomputedCombusDepartureTime = "10:00"

// combusLineDisplayName is the cosmetic line name the Combus Bridge also
// assigns (original_source/prometheus/ptrans/network.py).
const combusLineDisplayName = "コミュニティバス"

// buildPrecomputedCombusEdges turns an ordered list of candidate combus
// stop ids into transit nodes and combus edges sourced from the
// precomputed combus_routes table, mirroring internal/combus.Build's
// single-leg-plus-every-contiguous-sub-run expansion but without a live
// CarRoute: /area/search only ever supplies a sequence of existing stop
// ids, so the per-leg car routes it stitches together are the ones
// already computed for the Road-network Engine's candidate stop pairs.
func buildPrecomputedCombusEdges(acc *dataaccess.Accessor, stopIDs []string) ([]ptrans.TransitNode, []ptrans.CombusEdgeInput, error) {
	n := len(stopIDs)
	if n == 0 {
		return nil, nil, nil
	}

	stopByID := make(map[string]dataaccess.CombusStop, len(acc.CombusStops()))
	for _, s := range acc.CombusStops() {
		stopByID[s.StopID] = s
	}

	nodes := make([]ptrans.TransitNode, n)
	for i, id := range stopIDs {
		stop, ok := stopByID[id]
		if !ok {
			return nil, nil, apperr.New(apperr.MalformedInput, "unknown combus stop id %q", id)
		}
		nodes[i] = ptrans.TransitNode{NodeID: stop.StopID, Name: stop.Name, Coord: stop.Coord}
	}

	segments := make([]dataaccess.CombusRouteSegment, n)
	for i := 0; i < n; i++ {
		from, to := stopIDs[i], stopIDs[(i+1)%n]
		seg, ok := acc.CombusRouteSegment(from, to)
		if !ok {
			return nil, nil, apperr.New(apperr.DataNotFound, "no precomputed combus route segment %s -> %s", from, to)
		}
		segments[i] = seg
	}

	tt := ptrans.TimeTable{
		WeekdayTimes: []string{precomputedCombusDepartureTime},
		HolidayTimes: []string{precomputedCombusDepartureTime},
		WeekdayName:  combusLineDisplayName,
		HolidayName:  combusLineDisplayName,
	}

	edges := make([]ptrans.CombusEdgeInput, 0, n+n*(n-1))

	// Single-leg edges: one per precomputed segment.
	for i, seg := range segments {
		edges = append(edges, ptrans.CombusEdgeInput{
			From:        stopIDs[i],
			To:          stopIDs[(i+1)%n],
			DurationMin: seg.DurationMin,
			DisplayName: combusLineDisplayName,
			Polyline:    seg.Polyline,
			TimeTable:   tt,
		})
	}

	// Multi-leg edges: every contiguous run of length 2..n-1, merging
	// polylines and summing durations (spec.md §4.D.3's O(k^2) expansion).
	for start := 0; start < n; start++ {
		for runLen := 2; runLen < n; runLen++ {
			end := (start + runLen) % n
			polylines := make([]string, runLen)
			var totalDuration float64
			for step := 0; step < runLen; step++ {
				idx := (start + step) % n
				polylines[step] = segments[idx].Polyline
				totalDuration += segments[idx].DurationMin
			}
			merged, err := geo.MergePolylineSequence(polylines)
			if err != nil {
				return nil, nil, fmt.Errorf("orchestrator: merge combus polyline run from stop %s: %w", stopIDs[start], err)
			}
			edges = append(edges, ptrans.CombusEdgeInput{
				From:        stopIDs[start],
				To:          stopIDs[end],
				DurationMin: totalDuration,
				DisplayName: combusLineDisplayName,
				Polyline:    merged,
				TimeTable:   tt,
			})
		}
	}

	return nodes, edges, nil
}
