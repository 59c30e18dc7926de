// Package orchestrator implements the request orchestrator (component H):
// it drives the Road-network Engine, Combus Bridge, and Public-Transit
// Engine for bus-line-design requests, and the Reachability Engine plus
// OD-Pair Selector for area/impact requests, mapping every engine-level
// failure to the internal/apperr taxonomy the HTTP layer understands.
package orchestrator

import (
	"github.com/coins-dawn/prometheus/internal/config"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/odselect"
	"github.com/coins-dawn/prometheus/internal/ptrans"
	"github.com/coins-dawn/prometheus/internal/roadnet"
)

// Orchestrator holds every process-wide resource a request handler needs:
// the read-only Data Accessor, the immutable road graph, and the shared
// transit engine (which itself guards its own mutable request state).
type Orchestrator struct {
	acc       *dataaccess.Accessor
	roadGraph *roadnet.Graph
	transit   *ptrans.Engine
	cfg       *config.Config
}

// New wires the four process-wide resources into one Orchestrator.
func New(acc *dataaccess.Accessor, roadGraph *roadnet.Graph, transit *ptrans.Engine, cfg *config.Config) *Orchestrator {
	return &Orchestrator{acc: acc, roadGraph: roadGraph, transit: transit, cfg: cfg}
}

// CarSearchRequest is the input of POST /search/car.
type CarSearchRequest struct {
	RouteName string
	StartTime string
	Stops     []roadnet.Stop
}

// CarSearchResult is the output of POST /search/car.
type CarSearchResult struct {
	Status string
	Result roadnet.CarRoute
}

// PtransSearchRequest is the input of POST /search/ptrans. CarOutput is the
// optional candidate CarRoute whose combus edges get injected for the
// duration of this search only.
type PtransSearchRequest struct {
	Start     geo.Coord
	Goal      geo.Coord
	StartTime string
	CarOutput *roadnet.CarRoute
}

// AreaSearchRequest is the input of POST /area/search. Exactly one of
// TargetSpotID / TargetSpotType must be set.
type AreaSearchRequest struct {
	TargetSpotID   string
	TargetSpotType string
	MaxMinute      int
	MaxWalkM       int
	StartTime      string
	CombusStopIDs  []string
}

// ReachableSummary is the "reachable" field of POST /area/search's output.
type ReachableSummary struct {
	OriginalScore       int
	WithCombusScore     int
	DiffScore           int
	WithCombusScoreRate float64
}

// CombusPreview describes the candidate line's injected transit-graph
// shape, returned so a client can render it without re-deriving it.
type CombusPreview struct {
	Nodes []ptrans.TransitNode
	Edges []ptrans.CombusEdgeInput
}

// AreaSearchResult is the output of POST /area/search.
type AreaSearchResult struct {
	Reachable  ReachableSummary
	RoutePairs []odselect.DisplayPair
	Combus     CombusPreview
}
