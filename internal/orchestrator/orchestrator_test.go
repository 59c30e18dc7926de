package orchestrator

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/combus"
	"github.com/coins-dawn/prometheus/internal/config"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/ptrans"
	"github.com/coins-dawn/prometheus/internal/roadnet"
)

func writeRoadGraphFixture(t *testing.T) *roadnet.Graph {
	t.Helper()
	dir := t.TempDir()

	nodesPath := filepath.Join(dir, "nodes.csv")
	edgesPath := filepath.Join(dir, "edges.csv")

	require.NoError(t, os.WriteFile(nodesPath, []byte(
		"id,lat,lon\n1,36.0,137.0\n2,36.01,137.0\n3,36.0,137.01\n"), 0o644))
	require.NoError(t, os.WriteFile(edgesPath, []byte(
		"from,to,distance\n1,2,1000\n2,1,1000\n2,3,1000\n3,2,1000\n3,1,1000\n1,3,1000\n"), 0o644))

	g, err := roadnet.LoadGraph(nodesPath, edgesPath)
	require.NoError(t, err)
	return g
}

func writePtransGraphFixture(t *testing.T, stopRows string, busEdgeRows string) *ptrans.Graph {
	t.Helper()
	dir := t.TempDir()

	stopsPath := filepath.Join(dir, "stops.csv")
	busPath := filepath.Join(dir, "bus.csv")

	require.NoError(t, os.WriteFile(stopsPath, []byte("node_id,name,lat,lon\n"+stopRows), 0o644))
	require.NoError(t, os.WriteFile(busPath, []byte(
		"from,to,travel_time_min,weekday_times,holiday_times,weekday_name,holiday_name\n"+busEdgeRows), 0o644))

	g, err := ptrans.LoadGraph(stopsPath, busPath, 30, 10)
	require.NoError(t, err)
	return g
}

func testConfig() *config.Config {
	return &config.Config{CircuitCount: 2, WalkSpeedMPerMin: 30, RoadSpeedKMH: 40, MaxWalkMinutes: 10}
}

func triangleStops() []roadnet.Stop {
	return []roadnet.Stop{
		{Name: "a", Coord: geo.Coord{Lat: 36.0, Lon: 137.0}},
		{Name: "b", Coord: geo.Coord{Lat: 36.01, Lon: 137.0}},
		{Name: "c", Coord: geo.Coord{Lat: 36.0, Lon: 137.01}},
	}
}

func TestSearchCarBuildsLoopWithDerivedDepartures(t *testing.T) {
	o := New(nil, writeRoadGraphFixture(t), nil, testConfig())

	result, err := o.SearchCar(CarSearchRequest{
		RouteName: "line1",
		StartTime: "10:00",
		Stops:     triangleStops(),
	})
	require.NoError(t, err)

	assert.Equal(t, "ok", result.Status)
	require.Len(t, result.Result.Sections, 3)
	require.Len(t, result.Result.Stops, 3)
	assert.Equal(t, "10:00", result.Result.Stops[0].DepartureTimes[0])
	assert.Len(t, result.Result.Stops[0].DepartureTimes, 2) // CircuitCount = 2
}

func TestSearchPtransWithoutCombusWalksThroughNearestStop(t *testing.T) {
	g := writePtransGraphFixture(t, "T1,stop1,10.0,10.0\n", "")
	engine := ptrans.NewEngine(g)
	o := New(nil, nil, engine, testConfig())

	itinerary, err := o.SearchPtrans(PtransSearchRequest{
		Start:     geo.Coord{Lat: 9.999, Lon: 9.999},
		Goal:      geo.Coord{Lat: 10.001, Lon: 10.001},
		StartTime: "09:00",
	})
	require.NoError(t, err)
	require.Len(t, itinerary.Legs, 2)
	assert.Equal(t, ptrans.Walk, itinerary.Legs[0].Kind)
	assert.Equal(t, ptrans.Walk, itinerary.Legs[1].Kind)
}

func TestSearchPtransInjectsCombusFromCarOutput(t *testing.T) {
	roadGraph := writeRoadGraphFixture(t)
	o := New(nil, roadGraph, nil, testConfig())

	carResult, err := o.SearchCar(CarSearchRequest{StartTime: "10:00", Stops: triangleStops()})
	require.NoError(t, err)

	g := writePtransGraphFixture(t, "", "")
	engine := ptrans.NewEngine(g)
	o.transit = engine

	itinerary, err := o.SearchPtrans(PtransSearchRequest{
		Start:     triangleStops()[0].Coord,
		Goal:      triangleStops()[1].Coord,
		StartTime: "10:00",
		CarOutput: &carResult.Result,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, itinerary.Legs)

	foundCombus := false
	for _, leg := range itinerary.Legs {
		if leg.Kind == ptrans.Combus {
			foundCombus = true
		}
	}
	assert.True(t, foundCombus, "expected at least one combus leg in the traced itinerary")
}

func TestSearchPtransClearsInjectedStateBetweenRequests(t *testing.T) {
	roadGraph := writeRoadGraphFixture(t)
	o := New(nil, roadGraph, nil, testConfig())
	carResult, err := o.SearchCar(CarSearchRequest{StartTime: "10:00", Stops: triangleStops()})
	require.NoError(t, err)

	g := writePtransGraphFixture(t, "", "")
	engine := ptrans.NewEngine(g)
	o.transit = engine

	before := g.NodeCount()

	_, err = o.SearchPtrans(PtransSearchRequest{
		Start:     triangleStops()[0].Coord,
		Goal:      triangleStops()[1].Coord,
		StartTime: "10:00",
		CarOutput: &carResult.Result,
	})
	require.NoError(t, err)

	assert.Equal(t, before, g.NodeCount())
}

func TestToCombusEdgeInputsPreservesFields(t *testing.T) {
	edges := []combus.CombusEdge{
		{From: "A1000", To: "A2000", DurationMin: 5, DisplayName: "line", Polyline: "xyz"},
	}
	out := toCombusEdgeInputs(edges)
	require.Len(t, out, 1)
	assert.Equal(t, "A1000", out[0].From)
	assert.Equal(t, "A2000", out[0].To)
	assert.Equal(t, 5.0, out[0].DurationMin)
}

// --- area search ---

func writeAreaAccessorFixture(t *testing.T) *dataaccess.Accessor {
	t.Helper()
	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	write("spot_list.json", `[{"spot_id":"S1","name":"Ekimae","category":"hospital","coord":{"lat":0,"lon":0}}]`)
	write("combus_stops.json", `[
		{"stop_id":"CS1","name":"stop1","coord":{"lat":0,"lon":0}},
		{"stop_id":"CS2","name":"stop2","coord":{"lat":3,"lon":3}}
	]`)
	write("combus_routes.json", `[
		{"from_stop_id":"CS1","to_stop_id":"CS2","distance_km":1,"duration_min":5,"polyline":""},
		{"from_stop_id":"CS2","to_stop_id":"CS1","distance_km":1,"duration_min":5,"polyline":""}
	]`)
	write("best_combus_stop_sequences.json", `[]`)
	write("ref_points.json", `[{"ref_id":"P1","coord":{"lat":3,"lon":3}}]`)
	write("spot_to_spot_summary.json", `[
		{"from_spot_id":"S1","to_spot_id":"P1","total_time_min":999,"walk_m":0},
		{"from_spot_id":"S1","to_spot_id":"CS1","total_time_min":5,"walk_m":0}
	]`)
	write("mesh.json", `[
		{"mesh_code":1,"centroid":{"lat":0.5,"lon":0.5},"population":100},
		{"mesh_code":2,"centroid":{"lat":3,"lon":3},"population":200}
	]`)
	write("gtfs_stops.csv", "stop_id,name,lat,lon\n")
	write("gtfs_average_travel_times.csv", "from_stop_id,to_stop_id,travel_time_min\n")
	write("gtfs_shapes.json", `[]`)
	write("gtfs_trip_pairs.json", `[]`)

	type isochroneGobRecordLocal struct {
		SpotID    string
		MaxMinute int
		MaxWalkM  int
		StartTime string
		Rings     [][][][2]float64
		MeshCodes []int64
	}
	records := []isochroneGobRecordLocal{
		{SpotID: "S1", MaxMinute: 10, MaxWalkM: 500, StartTime: "10:00",
			Rings:     [][][][2]float64{{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}},
			MeshCodes: []int64{1}},
		{SpotID: "CS2", MaxMinute: 10, MaxWalkM: 500, StartTime: "10:00",
			Rings:     [][][][2]float64{{{{1, 1}, {4, 1}, {4, 4}, {1, 4}, {1, 1}}}},
			MeshCodes: []int64{2}},
	}
	isoFile, err := os.Create(filepath.Join(dir, "isochrones.gob"))
	require.NoError(t, err)
	defer isoFile.Close()
	require.NoError(t, gob.NewEncoder(isoFile).Encode(records))

	type storedRouteGobRecordLocal struct {
		FromSpotID   string
		ToSpotID     string
		StartTime    string
		TotalTimeMin float64
		Polyline     string
	}
	routes := []storedRouteGobRecordLocal{
		{FromSpotID: "S1", ToSpotID: "P1", StartTime: "10:00", TotalTimeMin: 999, Polyline: "xyz"},
	}
	routesFile, err := os.Create(filepath.Join(dir, "routes.gob"))
	require.NoError(t, err)
	defer routesFile.Close()
	require.NoError(t, gob.NewEncoder(routesFile).Encode(routes))

	acc, err := dataaccess.LoadAccessor(dir)
	require.NoError(t, err)
	return acc
}

func TestAreaSearchFindsFeasibleRoutePairViaCombus(t *testing.T) {
	acc := writeAreaAccessorFixture(t)
	g := writePtransGraphFixture(t, "", "")
	engine := ptrans.NewEngine(g)
	o := New(acc, nil, engine, testConfig())

	result, err := o.AreaSearch(AreaSearchRequest{
		TargetSpotID:  "S1",
		MaxMinute:     40,
		MaxWalkM:      1000,
		StartTime:     "10:00",
		CombusStopIDs: []string{"CS1", "CS2"},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Reachable.OriginalScore)
	assert.Equal(t, 300, result.Reachable.WithCombusScore)
	assert.Equal(t, 200, result.Reachable.DiffScore)
	assert.InDelta(t, 100.0, result.Reachable.WithCombusScoreRate, 0.001)

	require.Len(t, result.RoutePairs, 1)
	pair := result.RoutePairs[0]
	assert.Equal(t, "P1", pair.RefID)
	assert.Equal(t, "目的地", pair.EndName)
	assert.Equal(t, "Ekimae", pair.StartName)
	assert.Greater(t, pair.OriginalRoute.TotalDurationMin, 40.0)
	assert.LessOrEqual(t, pair.WithCombusRoute.TotalDurationMin, 40.0)
}

func TestAreaSearchWithNoCombusStopsYieldsEmptyDiff(t *testing.T) {
	acc := writeAreaAccessorFixture(t)
	g := writePtransGraphFixture(t, "", "")
	engine := ptrans.NewEngine(g)
	o := New(acc, nil, engine, testConfig())

	result, err := o.AreaSearch(AreaSearchRequest{
		TargetSpotID: "S1",
		MaxMinute:    40,
		MaxWalkM:     1000,
		StartTime:    "10:00",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Reachable.DiffScore)
	assert.Empty(t, result.RoutePairs)
}

func TestAreaSearchRejectsUnknownTargetSpot(t *testing.T) {
	acc := writeAreaAccessorFixture(t)
	g := writePtransGraphFixture(t, "", "")
	o := New(acc, nil, ptrans.NewEngine(g), testConfig())

	_, err := o.AreaSearch(AreaSearchRequest{TargetSpotID: "does-not-exist", MaxMinute: 40, MaxWalkM: 1000, StartTime: "10:00"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.MalformedInput))
}
