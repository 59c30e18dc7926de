package dataaccess

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T, dir string) {
	t.Helper()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	write("spot_list.json", `[{"spot_id":"S1","name":"Ekimae","coord":{"lat":36.69,"lon":137.21}}]`)
	write("combus_stops.json", `[{"stop_id":"CS1","name":"stop1","coord":{"lat":36.69,"lon":137.21}}]`)
	write("combus_routes.json", `[{"from_stop_id":"CS1","to_stop_id":"CS2","distance_km":1.2,"duration_min":3,"polyline":"abc"}]`)
	write("best_combus_stop_sequences.json", `[{"spot_type":"school","duration_min":60,"stop_ids":["CS1","CS2"]}]`)
	write("ref_points.json", `[{"ref_id":"P1","coord":{"lat":36.70,"lon":137.22}}]`)
	write("spot_to_spot_summary.json", `[{"from_spot_id":"S1","to_spot_id":"S2","total_time_min":42}]`)
	write("mesh.json", `[{"mesh_code":5440,"centroid":{"lat":36.69,"lon":137.21},"population":1200}]`)
	write("gtfs_stops.csv", "stop_id,name,lat,lon\nST1,stop1,36.69,137.21\n")
	write("gtfs_average_travel_times.csv", "from_stop_id,to_stop_id,travel_time_min\nST1,ST2,8.5\n")
	write("gtfs_shapes.json", `[{"from_stop_id":"ST1","to_stop_id":"ST2","polyline":"abc"}]`)
	write("gtfs_trip_pairs.json", `[{"from_stop_id":"ST1","to_stop_id":"ST2","weekday_times":["08:00","09:00"]}]`)

	gobRecords := []isochroneGobRecord{
		{SpotID: "S1", MaxMinute: 10, MaxWalkM: 500, StartTime: "10:00", Rings: [][][][2]float64{{{{137.0, 36.0}, {137.1, 36.0}, {137.1, 36.1}, {137.0, 36.0}}}}},
		{SpotID: "S1", MaxMinute: 20, MaxWalkM: 800, StartTime: "10:00", Rings: [][][][2]float64{{{{137.0, 36.0}, {137.2, 36.0}, {137.2, 36.2}, {137.0, 36.0}}}}},
	}
	isoFile, err := os.Create(filepath.Join(dir, "isochrones.gob"))
	require.NoError(t, err)
	defer isoFile.Close()
	require.NoError(t, gob.NewEncoder(isoFile).Encode(gobRecords))

	routes := []storedRouteGobRecord{
		{FromSpotID: "S1", ToSpotID: "S2", StartTime: "10:00", TotalTimeMin: 30, Polyline: "xyz"},
	}
	routesFile, err := os.Create(filepath.Join(dir, "routes.gob"))
	require.NoError(t, err)
	defer routesFile.Close()
	require.NoError(t, gob.NewEncoder(routesFile).Encode(routes))
}

func TestLoadAccessorReadsEveryTable(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)

	a, err := LoadAccessor(dir)
	require.NoError(t, err)

	spot, ok := a.SpotByID("S1")
	require.True(t, ok)
	assert.Equal(t, "Ekimae", spot.Name)

	assert.Len(t, a.CombusStops(), 1)
	segment, ok := a.CombusRouteSegment("CS1", "CS2")
	require.True(t, ok)
	assert.Equal(t, 1.2, segment.DistanceKM)
	assert.Len(t, a.BestCombusStopSequences(), 1)
	assert.Len(t, a.RefPoints(), 1)
	assert.Len(t, a.GTFSStops(), 1)
	assert.Len(t, a.GTFSAverageTravelTimes(), 1)

	summary, ok := a.SpotToSpotSummary("S1", "S2")
	require.True(t, ok)
	assert.Equal(t, 42.0, summary.TotalTimeMin)

	pop, ok := a.MeshPopulation(5440)
	require.True(t, ok)
	assert.Equal(t, 1200, pop)
}

func TestLoadGeoJSONFallsBackToCoarserBucket(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	a, err := LoadAccessor(dir)
	require.NoError(t, err)

	// Requesting (15, 600) should fall back to the (10, 500) record, not the
	// (20, 800) record which exceeds the requested ceiling.
	rec, ok := a.LoadGeoJSON("S1", 15, 600, "10:00")
	require.True(t, ok)
	assert.Equal(t, 10, rec.MaxMinute)
	assert.Equal(t, 500, rec.MaxWalkM)
	assert.Len(t, rec.Polygon, 1)
}

func TestLoadGeoJSONPicksTightestQualifyingBucket(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	a, err := LoadAccessor(dir)
	require.NoError(t, err)

	rec, ok := a.LoadGeoJSON("S1", 30, 900, "10:00")
	require.True(t, ok)
	assert.Equal(t, 20, rec.MaxMinute)
}

func TestLoadGeoJSONMissingReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	a, err := LoadAccessor(dir)
	require.NoError(t, err)

	_, ok := a.LoadGeoJSON("S1", 5, 100, "10:00")
	assert.False(t, ok)
}

func TestLoadRoute(t *testing.T) {
	dir := t.TempDir()
	writeFixtures(t, dir)
	a, err := LoadAccessor(dir)
	require.NoError(t, err)

	route, ok := a.LoadRoute("S1", "S2", "10:00")
	require.True(t, ok)
	assert.Equal(t, "xyz", route.Polyline)

	_, ok = a.LoadRoute("S1", "S3", "10:00")
	assert.False(t, ok)
}

func TestMultiPolygonRoundTripsThroughGobRings(t *testing.T) {
	mp := orb.MultiPolygon{orb.Polygon{orb.Ring{{137.0, 36.0}, {137.1, 36.0}, {137.0, 36.0}}}}
	rings := fromMultiPolygon(mp)
	back := toMultiPolygon(rings)
	assert.Equal(t, mp, back)
}
