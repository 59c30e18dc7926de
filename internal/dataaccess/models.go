// Package dataaccess implements the data accessor (component B): every
// static table the core reads is loaded once at startup from a file-backed
// artefact directory and exposed behind typed lookups on a single Accessor.
package dataaccess

import (
	"github.com/paulmach/orb"

	"github.com/coins-dawn/prometheus/internal/geo"
)

// Spot is one named point of interest ("spot_list"), grouped by Category
// (e.g. "school", "clinic") so /area/search can accept either a specific
// spot or a whole category via target-spot-type.
type Spot struct {
	SpotID   string    `json:"spot_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Coord    geo.Coord `json:"coord"`
}

// CombusStop is one candidate community-bus stop ("combus_stops").
type CombusStop struct {
	StopID string    `json:"stop_id"`
	Name   string    `json:"name"`
	Coord  geo.Coord `json:"coord"`
}

// CombusRouteSegment is one precomputed stop-to-stop car leg between two
// candidate combus stops ("combus_routes"): the Road-network Engine's
// output, precomputed once so /area/search never has to invoke component C
// live for a stop selection that already exists in the candidate set.
type CombusRouteSegment struct {
	FromStopID  string  `json:"from_stop_id"`
	ToStopID    string  `json:"to_stop_id"`
	DistanceKM  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
	Polyline    string  `json:"polyline"`
}

// BestCombusStopSequence is one precomputed best circular stop ordering for
// a spot type/duration-limit combination ("best_combus_stop_sequences").
type BestCombusStopSequence struct {
	SpotType    string   `json:"spot_type"`
	DurationMin float64  `json:"duration_min"`
	StopIDs     []string `json:"stop_ids"`
}

// RefPoint is one reference point used by the OD-pair selector's
// feasibility scan ("ref_points").
type RefPoint struct {
	RefID string    `json:"ref_id"`
	Coord geo.Coord `json:"coord"`
}

// SpotToSpotSummary is one precomputed best-route summary between two
// spots, used as the "without combus" baseline ("spot_to_spot_summary").
type SpotToSpotSummary struct {
	FromSpotID   string  `json:"from_spot_id"`
	ToSpotID     string  `json:"to_spot_id"`
	TotalTimeMin float64 `json:"total_time_min"`
	WalkM        float64 `json:"walk_m"`
	DepartureMin float64 `json:"departure_min"`
	ArrivalMin   float64 `json:"arrival_min"`
}

// MeshPopulation is one mesh code's population weight ("mesh"), with its
// representative centroid as loaded. The reachability engine scores cells by
// mesh-code membership only; it does not test the centroid against any
// polygon.
type MeshPopulation struct {
	MeshCode   int64     `json:"mesh_code"`
	Centroid   geo.Coord `json:"centroid"`
	Population int       `json:"population"`
}

// IsochroneRecord is one precomputed reachable-area artefact, keyed by
// (spot, max minute, max walk metres, start time) per spec.md §4.F. Per
// spec.md §3's Isochrone record, it carries the reachable mesh-code set
// alongside the geometry so population scoring never has to re-derive set
// membership by testing mesh centroids against the polygon (Glossary:
// "Reachable-mesh set ... carried alongside the geometry for exact
// population scoring").
type IsochroneRecord struct {
	SpotID    string           `json:"spot_id"`
	MaxMinute int              `json:"max_minute"`
	MaxWalkM  int              `json:"max_walk_m"`
	StartTime string           `json:"start_time"`
	Polygon   orb.MultiPolygon `json:"-"`
	MeshCodes []int64          `json:"mesh_codes"`
}

// StoredRoute is an opaque precomputed route artefact, looked up by
// (from, to, start time) — spec.md §6's "routes" table.
type StoredRoute struct {
	FromSpotID   string  `json:"from_spot_id"`
	ToSpotID     string  `json:"to_spot_id"`
	StartTime    string  `json:"start_time"`
	TotalTimeMin float64 `json:"total_time_min"`
	Polyline     string  `json:"polyline"`
}

// GTFSStop is one stop row of the "gtfs.stops" table.
type GTFSStop struct {
	StopID string    `json:"stop_id"`
	Name   string    `json:"name"`
	Coord  geo.Coord `json:"coord"`
}

// GTFSAverageTravelTime is one "gtfs.average_travel_times" row: the mean
// scheduled travel time between two consecutive stops on a line.
type GTFSAverageTravelTime struct {
	FromStopID    string  `json:"from_stop_id"`
	ToStopID      string  `json:"to_stop_id"`
	TravelTimeMin float64 `json:"travel_time_min"`
}

// GTFSShape is one "gtfs.shapes" polyline for a scheduled line segment.
type GTFSShape struct {
	FromStopID string `json:"from_stop_id"`
	ToStopID   string `json:"to_stop_id"`
	Polyline   string `json:"polyline"`
}

// GTFSTripPair is one "gtfs.trip_pairs" scheduled-departure timetable for a
// (from, to) stop pair.
type GTFSTripPair struct {
	FromStopID   string   `json:"from_stop_id"`
	ToStopID     string   `json:"to_stop_id"`
	WeekdayTimes []string `json:"weekday_times"`
	HolidayTimes []string `json:"holiday_times"`
	WeekdayName  string   `json:"weekday_name"`
	HolidayName  string   `json:"holiday_name"`
}
