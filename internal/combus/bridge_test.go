package combus

import (
	"testing"

	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/roadnet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoute() roadnet.CarRoute {
	mkStop := func(name string, lat, lon float64) roadnet.Stop {
		return roadnet.Stop{Name: name, Coord: geo.Coord{Lat: lat, Lon: lon}}
	}
	stops := []roadnet.Stop{
		mkStop("s1", 36.65742, 137.17421),
		mkStop("s2", 36.68936, 137.18519),
		mkStop("s3", 36.67738, 137.23892),
	}
	departures := []string{"10:00", "11:00"}
	stopEntries := make([]roadnet.StopEntry, len(stops))
	for i, s := range stops {
		stopEntries[i] = roadnet.StopEntry{Stop: s, StayTimeMin: 1, DepartureTimes: departures}
	}
	sections := []roadnet.Section{
		{DistanceM: 1000, DurationMin: 6, Polyline: geo.EncodePolyline([]geo.Coord{stops[0].Coord, stops[1].Coord})},
		{DistanceM: 1000, DurationMin: 6, Polyline: geo.EncodePolyline([]geo.Coord{stops[1].Coord, stops[2].Coord})},
		{DistanceM: 1000, DurationMin: 6, Polyline: geo.EncodePolyline([]geo.Coord{stops[2].Coord, stops[0].Coord})},
	}
	return roadnet.CarRoute{
		TotalDistanceM: 3000,
		TotalDurationM: 21,
		Stops:          stopEntries,
		Sections:       sections,
	}
}

func TestBuildMintsStableIDsForSameRoute(t *testing.T) {
	route := sampleRoute()

	nodes1, _, err := Build(route)
	require.NoError(t, err)
	nodes2, _, err := Build(route)
	require.NoError(t, err)

	for i := range nodes1 {
		assert.Equal(t, nodes1[i].NodeID, nodes2[i].NodeID)
		assert.Regexp(t, `^A\d{4}$`, nodes1[i].NodeID)
	}
}

func TestBuildProducesOneSingleLegEdgePerSection(t *testing.T) {
	route := sampleRoute()
	nodes, edges, err := Build(route)
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	singleLeg := 0
	for _, e := range edges {
		if e.DurationMin == 6 {
			singleLeg++
		}
	}
	assert.Equal(t, 3, singleLeg)
}

func TestBuildProducesMultiLegEdgesForEveryRun(t *testing.T) {
	route := sampleRoute()
	_, edges, err := Build(route)
	require.NoError(t, err)

	// k=3 stops: single-leg (3) + multi-leg run length 2 only (3) = 6 edges.
	assert.Len(t, edges, 6)
}
