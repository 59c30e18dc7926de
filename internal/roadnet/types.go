// Package roadnet implements the road-network routing engine (component C):
// mesh-indexed nearest-node lookup, constrained successive Dijkstra with
// visit-exclusion to build a non-self-overlapping loop, geometry tracing,
// and cyclic timetable synthesis.
package roadnet

import "github.com/coins-dawn/prometheus/internal/geo"

// RoadNode is an immutable (after load) node of the road graph.
type RoadNode struct {
	ID       int64
	Coord    geo.Coord
	MeshCode int64
}

// roadEdge is a directed edge of the road graph's adjacency list.
type roadEdge struct {
	To       int64
	Distance float64
}

// Section is a traced leg of a route: distance, duration, and geometry.
type Section struct {
	DistanceM   float64 `json:"distance_m"`
	DurationMin int     `json:"duration_m"`
	Polyline    string  `json:"polyline"`
}

// Stop is a user-supplied anchor on a combus line, not itself a graph node.
type Stop struct {
	Name  string    `json:"name"`
	Coord geo.Coord `json:"coord"`
}

// StopEntry is a Stop augmented with its computed stay time and synthesised
// departure times.
type StopEntry struct {
	Stop           Stop     `json:"stop"`
	StayTimeMin    int      `json:"stay_time"`
	DepartureTimes []string `json:"departure_times"`
}

// CarRoute is the finished circular road route: per-leg sections and
// per-stop departure schedules.
type CarRoute struct {
	TotalDistanceM float64     `json:"distance"`
	TotalDurationM int         `json:"duration"`
	Stops          []StopEntry `json:"stops"`
	Sections       []Section   `json:"sections"`
}

// stayTimePerStopMin is the fixed dwell time spec.md §3 assigns to every
// StopEntry.
const stayTimePerStopMin = 1
