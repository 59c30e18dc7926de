package ptrans

import (
	"testing"

	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildLineGraph builds three stops (X -> Y -> Z) connected by two
// scheduled 10-minute BUS edges with a single departure each (X -> Y at
// 10:00, Y -> Z at 10:10), plus a direct 90-minute WALK edge X -> Z, enough
// to exercise wait-time cost, mode penalties, and the shared-state clear
// invariant without reading fixture files.
func buildLineGraph() *Graph {
	g := newGraph()
	g.addNode(TransitNode{NodeID: "X", Coord: geo.Coord{Lat: 36.00, Lon: 137.00}})
	g.addNode(TransitNode{NodeID: "Y", Coord: geo.Coord{Lat: 36.01, Lon: 137.00}})
	g.addNode(TransitNode{NodeID: "Z", Coord: geo.Coord{Lat: 36.02, Lon: 137.00}})

	tt := TimeTable{WeekdayTimes: []string{"10:00"}, HolidayTimes: []string{"10:00"}, WeekdayName: "line1"}
	ttYZ := TimeTable{WeekdayTimes: []string{"10:10"}, HolidayTimes: []string{"10:10"}, WeekdayName: "line1"}
	g.addEdge("X", "Y", 10, Bus, "", "line1", &tt)
	g.addEdge("Y", "Z", 10, Bus, "", "line1", &ttYZ)
	g.addEdge("X", "Z", 90, Walk, "", "", nil)

	return g
}

func TestSearchWaitsForScheduledDeparture(t *testing.T) {
	g := buildLineGraph()
	e := NewEngine(g)

	var result *SearchResult
	err := e.WithRequest(func(e *Engine) error {
		var searchErr error
		result, searchErr = e.Search("X", "Z", "09:00")
		return searchErr
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Boarding at 09:00 waits until 10:00, then two 10-minute legs: arrives 10:20.
	assert.Equal(t, []string{"X", "Y", "Z"}, result.NodeSeq)
	assert.Equal(t, float64(10*60+20), result.ArrivalMin[len(result.ArrivalMin)-1])
}

func TestSearchPrefersBusWhenFaster(t *testing.T) {
	g := buildLineGraph()
	e := NewEngine(g)

	var result *SearchResult
	err := e.WithRequest(func(e *Engine) error {
		var searchErr error
		result, searchErr = e.Search("X", "Z", "09:55")
		return searchErr
	})
	require.NoError(t, err)

	// Boarding at 09:55 waits only 5 min then rides 20 min (arrives 10:20),
	// versus walking 90 min straight (arrives 11:25): the bus wins.
	assert.Equal(t, []string{"X", "Y", "Z"}, result.NodeSeq)
}

func TestSearchReturnsNoTransitPathWhenUnreachable(t *testing.T) {
	g := newGraph()
	g.addNode(TransitNode{NodeID: "X", Coord: geo.Coord{Lat: 36.0, Lon: 137.0}})
	g.addNode(TransitNode{NodeID: "Z", Coord: geo.Coord{Lat: 37.0, Lon: 138.0}})
	e := NewEngine(g)

	err := e.WithRequest(func(e *Engine) error {
		_, searchErr := e.Search("X", "Z", "09:00")
		return searchErr
	})
	assert.Error(t, err)
}

func TestEngineClearRestoresGraphAfterCombusInjection(t *testing.T) {
	g := buildLineGraph()
	e := NewEngine(g)

	preNodes := g.NodeCount()
	preEdges := g.EdgeCount()

	err := e.WithRequest(func(e *Engine) error {
		// A1234 sits ~222m from X (well within a 10-minute, 30m/min walk)
		// and well outside walking range of Y/Z, so the combus-node walk
		// pass adds exactly the X<->A1234 pair without colliding with the
		// single-leg combus edge below.
		nodes := []TransitNode{{NodeID: "A1234", Coord: geo.Coord{Lat: 36.002, Lon: 137.0}}}
		edges := []CombusEdgeInput{
			{From: "A1234", To: "Y", DurationMin: 3, DisplayName: "combus", TimeTable: TimeTable{WeekdayTimes: []string{"10:05"}}},
		}
		e.InjectCombus(nodes, edges, 30, 10)

		assert.Equal(t, preNodes+1, g.NodeCount())
		assert.Equal(t, preEdges+3, g.EdgeCount())
		return nil
	})
	require.NoError(t, err)

	// invariant 4: shared graph contents equal pre-request contents
	assert.Equal(t, preNodes, g.NodeCount())
	assert.Equal(t, preEdges, g.EdgeCount())
	_, ok := g.Node("A1234")
	assert.False(t, ok)
}

func TestInjectAnchorsAddsStartAndGoalWithWalkEdges(t *testing.T) {
	g := buildLineGraph()
	e := NewEngine(g)

	err := e.WithRequest(func(e *Engine) error {
		e.InjectAnchors(geo.Coord{Lat: 35.999, Lon: 137.00}, geo.Coord{Lat: 36.021, Lon: 137.00}, 2, 30)

		result, searchErr := e.Search(StartNodeID, GoalNodeID, "09:00")
		require.NoError(t, searchErr)
		assert.Equal(t, StartNodeID, result.NodeSeq[0])
		assert.Equal(t, GoalNodeID, result.NodeSeq[len(result.NodeSeq)-1])
		return nil
	})
	require.NoError(t, err)

	_, ok := g.Node(StartNodeID)
	assert.False(t, ok, "START must not survive past the request window")
}

func TestTraceProducesOneLegPerEdge(t *testing.T) {
	g := buildLineGraph()
	e := NewEngine(g)

	err := e.WithRequest(func(e *Engine) error {
		result, searchErr := e.Search("X", "Z", "09:00")
		require.NoError(t, searchErr)

		it, traceErr := e.Trace(result)
		require.NoError(t, traceErr)
		require.Len(t, it.Legs, 2)
		assert.Equal(t, Bus, it.Legs[0].Kind)
		assert.Equal(t, "line1", it.Legs[0].DisplayName)
		return nil
	})
	require.NoError(t, err)
}
