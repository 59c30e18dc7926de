package ptrans

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/coins-dawn/prometheus/internal/geo"
)

// LoadGraph builds the base transit graph from a GTFS-derived stops table
// and a BUS-line edge/timetable table, then derives WALK edges between
// every stop pair within walking range (original_source/prometheus/ptrans/
// network.py's make_walk_edges: itertools.combinations over all stops,
// gated on haversine distance translated to minutes at walkSpeedMPerMin
// and kept only under maxWalkMinutes).
//
// stopsCSVPath columns: node_id,name,lat,lon
// busEdgesCSVPath columns: from,to,travel_time_min,weekday_times,holiday_times,weekday_name,holiday_name
// (weekday_times/holiday_times are ";"-separated "HH:MM" lists, ascending).
func LoadGraph(stopsCSVPath, busEdgesCSVPath string, walkSpeedMPerMin, maxWalkMinutes float64) (*Graph, error) {
	g := newGraph()

	if err := loadStops(g, stopsCSVPath); err != nil {
		return nil, fmt.Errorf("ptrans: load stops: %w", err)
	}
	if err := loadBusEdges(g, busEdgesCSVPath); err != nil {
		return nil, fmt.Errorf("ptrans: load bus edges: %w", err)
	}
	addWalkEdges(g, walkSpeedMPerMin, maxWalkMinutes)

	return g, nil
}

func openCSV(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	return r, f, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func loadStops(g *Graph, path string) error {
	r, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return err
	}
	idx := columnIndex(header)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		lat, err := strconv.ParseFloat(rec[idx["lat"]], 64)
		if err != nil {
			return fmt.Errorf("parse lat: %w", err)
		}
		lon, err := strconv.ParseFloat(rec[idx["lon"]], 64)
		if err != nil {
			return fmt.Errorf("parse lon: %w", err)
		}
		g.addNode(TransitNode{
			NodeID: rec[idx["node_id"]],
			Name:   rec[idx["name"]],
			Coord:  geo.Coord{Lat: lat, Lon: lon},
		})
	}
	return nil
}

func loadBusEdges(g *Graph, path string) error {
	r, f, err := openCSV(path)
	if err != nil {
		return err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return err
	}
	idx := columnIndex(header)

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		travelTime, err := strconv.ParseFloat(rec[idx["travel_time_min"]], 64)
		if err != nil {
			return fmt.Errorf("parse travel_time_min: %w", err)
		}
		tt := TimeTable{
			WeekdayTimes: splitTimes(rec[idx["weekday_times"]]),
			HolidayTimes: splitTimes(rec[idx["holiday_times"]]),
			WeekdayName:  rec[idx["weekday_name"]],
			HolidayName:  rec[idx["holiday_name"]],
		}
		from, to := rec[idx["from"]], rec[idx["to"]]
		g.addEdge(from, to, travelTime, Bus, "", tt.WeekdayName, &tt)
	}
	return nil
}

func splitTimes(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// addWalkEdges derives bidirectional WALK edges between every node pair
// reachable within maxWalkMinutes (spec.md §4.E): O(n^2) over the loaded
// stop set, matching the original's itertools.combinations sweep.
func addWalkEdges(g *Graph, walkSpeedMPerMin, maxWalkMinutes float64) {
	ids := g.NodeIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := g.nodes[ids[i]], g.nodes[ids[j]]
			distM := geo.HaversineMFloat(a.Coord, b.Coord)
			minutes := distM / walkSpeedMPerMin
			if minutes >= maxWalkMinutes {
				continue
			}
			g.addEdge(a.NodeID, b.NodeID, minutes, Walk, "", "", nil)
			g.addEdge(b.NodeID, a.NodeID, minutes, Walk, "", "", nil)
		}
	}
}
