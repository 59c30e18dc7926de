package dataaccess

import (
	"fmt"
	"sync"
)

// Accessor is the single read-only view over every static table the core
// reads (spec.md §6's Data Accessor contract): loaded once, shared
// read-only across every subsequent request.
type Accessor struct {
	spots     []Spot
	spotsByID map[string]Spot

	combusStops             []CombusStop
	combusRouteSegments     map[[2]string]CombusRouteSegment
	bestCombusStopSequences []BestCombusStopSequence
	refPoints               []RefPoint

	spotToSpotSummaries map[[2]string]SpotToSpotSummary
	meshes              []MeshPopulation
	meshPopulations     map[int64]int

	isochronesBySpotStart map[[2]string][]IsochroneRecord
	storedRoutes          map[[3]string]StoredRoute

	gtfsStops          []GTFSStop
	gtfsAvgTravelTimes []GTFSAverageTravelTime
	gtfsShapes         []GTFSShape
	gtfsTripPairs      []GTFSTripPair
}

var (
	singleton     *Accessor
	singletonOnce sync.Once
	singletonErr  error
)

// GetAccessor returns the process-wide Accessor, loading it from dataDir on
// the first call (the teacher's graph.GetGraph()/db.GetPool() singleton
// idiom, reused here for a file-backed accessor).
func GetAccessor(dataDir string) (*Accessor, error) {
	singletonOnce.Do(func() {
		singleton, singletonErr = LoadAccessor(dataDir)
	})
	return singleton, singletonErr
}

// LoadAccessor reads every static table under dataDir into memory. Callers
// that need a fresh, independently-loaded Accessor (tests, tools) should
// call this directly instead of GetAccessor.
func LoadAccessor(dataDir string) (*Accessor, error) {
	a := &Accessor{
		spotsByID:             make(map[string]Spot),
		combusRouteSegments:   make(map[[2]string]CombusRouteSegment),
		spotToSpotSummaries:   make(map[[2]string]SpotToSpotSummary),
		meshPopulations:       make(map[int64]int),
		isochronesBySpotStart: make(map[[2]string][]IsochroneRecord),
		storedRoutes:          make(map[[3]string]StoredRoute),
	}

	loaders := []struct {
		name string
		fn   func(*Accessor, string) error
	}{
		{"spot_list.json", loadSpots},
		{"combus_stops.json", loadCombusStops},
		{"combus_routes.json", loadCombusRouteSegments},
		{"best_combus_stop_sequences.json", loadBestCombusStopSequences},
		{"ref_points.json", loadRefPoints},
		{"spot_to_spot_summary.json", loadSpotToSpotSummary},
		{"mesh.json", loadMeshPopulations},
		{"gtfs_stops.csv", loadGTFSStops},
		{"gtfs_average_travel_times.csv", loadGTFSAverageTravelTimes},
		{"gtfs_shapes.json", loadGTFSShapes},
		{"gtfs_trip_pairs.json", loadGTFSTripPairs},
		{"isochrones.gob", loadIsochrones},
		{"routes.gob", loadStoredRoutes},
	}

	for _, l := range loaders {
		if err := l.fn(a, dataDir+"/"+l.name); err != nil {
			return nil, fmt.Errorf("dataaccess: load %s: %w", l.name, err)
		}
	}

	return a, nil
}

func (a *Accessor) Spots() []Spot { return a.spots }

func (a *Accessor) SpotByID(id string) (Spot, bool) {
	s, ok := a.spotsByID[id]
	return s, ok
}

// SpotsByCategory returns every spot tagged with the given category
// (supports /area/search's target-spot-type input).
func (a *Accessor) SpotsByCategory(category string) []Spot {
	var out []Spot
	for _, s := range a.spots {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func (a *Accessor) CombusStops() []CombusStop { return a.combusStops }

func (a *Accessor) CombusRouteSegment(from, to string) (CombusRouteSegment, bool) {
	s, ok := a.combusRouteSegments[[2]string{from, to}]
	return s, ok
}

func (a *Accessor) BestCombusStopSequences() []BestCombusStopSequence {
	return a.bestCombusStopSequences
}

func (a *Accessor) RefPoints() []RefPoint { return a.refPoints }

func (a *Accessor) SpotToSpotSummary(from, to string) (SpotToSpotSummary, bool) {
	s, ok := a.spotToSpotSummaries[[2]string{from, to}]
	return s, ok
}

func (a *Accessor) MeshPopulation(meshCode int64) (int, bool) {
	p, ok := a.meshPopulations[meshCode]
	return p, ok
}

// Meshes returns every loaded mesh-population record, centroid included.
func (a *Accessor) Meshes() []MeshPopulation { return a.meshes }

func (a *Accessor) GTFSStops() []GTFSStop                           { return a.gtfsStops }
func (a *Accessor) GTFSAverageTravelTimes() []GTFSAverageTravelTime { return a.gtfsAvgTravelTimes }
func (a *Accessor) GTFSShapes() []GTFSShape                         { return a.gtfsShapes }
func (a *Accessor) GTFSTripPairs() []GTFSTripPair                   { return a.gtfsTripPairs }
