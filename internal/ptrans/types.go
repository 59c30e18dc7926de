// Package ptrans implements the multi-modal public-transit engine
// (component E): a weighted multigraph over transit stops, walk transfers,
// and injected combus nodes/edges, with schedule-aware wait-time cost, a
// time-dependent shortest-path search, and an itinerary tracer.
package ptrans

import "github.com/coins-dawn/prometheus/internal/geo"

// EdgeKind distinguishes the three transit-edge modes of spec.md §3.
type EdgeKind string

const (
	Walk   EdgeKind = "WALK"
	Bus    EdgeKind = "BUS"
	Combus EdgeKind = "COMBUS"
)

// StartNodeID and GoalNodeID are the reserved per-request anchor sentinels.
const (
	StartNodeID = "START"
	GoalNodeID  = "GOAL"
)

// TransitNode is a node of the transit graph: a GTFS stop, a freshly minted
// combus node ("A"+4 digits), or one of the reserved anchor sentinels.
type TransitNode struct {
	NodeID string    `json:"node_id"`
	Name   string    `json:"name"`
	Coord  geo.Coord `json:"coord"`
}

// TimeTable carries the weekday/holiday departure schedules for one (from,
// to) edge; each times list is strictly ascending "HH:MM" within one
// operating day.
type TimeTable struct {
	WeekdayTimes []string `json:"weekday_times"`
	HolidayTimes []string `json:"holiday_times"`
	WeekdayName  string   `json:"weekday_name"`
	HolidayName  string   `json:"holiday_name"`
}

// TransitEdge is one directed hop of the transit graph.
type TransitEdge struct {
	From          string
	To            string
	TravelTimeMin float64
	Kind          EdgeKind
}

// AdjacencyEntry is one outgoing hop from a node, as stored in the
// adjacency list used by the search.
type AdjacencyEntry struct {
	Dst     string
	CostMin float64
	Kind    EdgeKind
}
