// Package odselect implements the OD-pair selector (component G): given a
// mobility-impact diff region and per-reference-point route candidates, it
// filters, gates on feasibility, and spread-samples the representative
// origin-destination pairs a response surfaces.
package odselect

import (
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/ptrans"
)

// RouteLeg is one directed hop of a candidate route, enough detail to
// merge several legs into a single Route (spec.md §4.G step 2: "geometry
// concatenation with duplicate-join removal, distances summed, walk
// distance summed across WALK sections only").
type RouteLeg struct {
	Kind        ptrans.EdgeKind
	DistanceM   float64
	DurationMin float64
	Polyline    string
}

// Route is a fully merged candidate route.
type Route struct {
	TotalDistanceM   float64
	TotalDurationMin float64
	WalkDistanceM    float64
	Polyline         string
}

// MergeLegs concatenates an ordered list of legs into one Route, summing
// distance and duration across every leg but walk distance only across
// WALK-kind legs, and merging polylines with duplicate-join-point removal.
func MergeLegs(legs []RouteLeg) (Route, error) {
	var route Route
	polylines := make([]string, 0, len(legs))
	for _, l := range legs {
		route.TotalDistanceM += l.DistanceM
		route.TotalDurationMin += l.DurationMin
		if l.Kind == ptrans.Walk {
			route.WalkDistanceM += l.DistanceM
		}
		if l.Polyline != "" {
			polylines = append(polylines, l.Polyline)
		}
	}
	merged, err := geo.MergePolylineSequence(polylines)
	if err != nil {
		return Route{}, err
	}
	route.Polyline = merged
	return route, nil
}

// RoutePair is one reference point's original-vs-with-combus comparison.
type RoutePair struct {
	RefID     string
	RefName   string
	DestCoord geo.Coord

	OriginalRoute Route
	OriginalWalkM float64

	WithCombusRoute Route
	WithCombusWalkM float64
}

// DisplayPair is a RoutePair with normalised display names (spec.md §4.G
// step 5): the destination is always labelled "目的地" ("destination") and
// the origin carries the originating spot's own name.
type DisplayPair struct {
	RoutePair
	StartName string
	EndName   string
}
