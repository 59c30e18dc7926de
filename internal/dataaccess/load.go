package dataaccess

import (
	"encoding/csv"
	"encoding/gob"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/paulmach/orb"

	"github.com/coins-dawn/prometheus/internal/geo"
)

func loadJSONFile(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(dst)
}

func loadSpots(a *Accessor, path string) error {
	if err := loadJSONFile(path, &a.spots); err != nil {
		return err
	}
	for _, s := range a.spots {
		a.spotsByID[s.SpotID] = s
	}
	return nil
}

func loadCombusStops(a *Accessor, path string) error {
	return loadJSONFile(path, &a.combusStops)
}

func loadCombusRouteSegments(a *Accessor, path string) error {
	var rows []CombusRouteSegment
	if err := loadJSONFile(path, &rows); err != nil {
		return err
	}
	for _, r := range rows {
		a.combusRouteSegments[[2]string{r.FromStopID, r.ToStopID}] = r
	}
	return nil
}

func loadBestCombusStopSequences(a *Accessor, path string) error {
	return loadJSONFile(path, &a.bestCombusStopSequences)
}

func loadRefPoints(a *Accessor, path string) error {
	return loadJSONFile(path, &a.refPoints)
}

func loadSpotToSpotSummary(a *Accessor, path string) error {
	var rows []SpotToSpotSummary
	if err := loadJSONFile(path, &rows); err != nil {
		return err
	}
	for _, r := range rows {
		a.spotToSpotSummaries[[2]string{r.FromSpotID, r.ToSpotID}] = r
	}
	return nil
}

func loadMeshPopulations(a *Accessor, path string) error {
	var rows []MeshPopulation
	if err := loadJSONFile(path, &rows); err != nil {
		return err
	}
	a.meshes = rows
	for _, r := range rows {
		a.meshPopulations[r.MeshCode] = r.Population
	}
	return nil
}

func loadGTFSShapes(a *Accessor, path string) error {
	return loadJSONFile(path, &a.gtfsShapes)
}

func loadGTFSTripPairs(a *Accessor, path string) error {
	return loadJSONFile(path, &a.gtfsTripPairs)
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

func loadGTFSStops(a *Accessor, path string) error {
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
			return err
		}
		lon, err := strconv.ParseFloat(rec[idx["lon"]], 64)
		if err != nil {
			return err
		}
		a.gtfsStops = append(a.gtfsStops, GTFSStop{
			StopID: rec[idx["stop_id"]],
			Name:   rec[idx["name"]],
			Coord:  geo.Coord{Lat: lat, Lon: lon},
		})
	}
	return nil
}

func loadGTFSAverageTravelTimes(a *Accessor, path string) error {
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
			return err
		}
		a.gtfsAvgTravelTimes = append(a.gtfsAvgTravelTimes, GTFSAverageTravelTime{
			FromStopID:    rec[idx["from_stop_id"]],
			ToStopID:      rec[idx["to_stop_id"]],
			TravelTimeMin: travelTime,
		})
	}
	return nil
}

// isochroneGobRecord mirrors IsochroneRecord with the polygon stored as
// plain nested float slices: orb geometries are plain structs/arrays of
// float64 under the hood, but gob requires a registered concrete type for
// every field it walks, and orb.MultiPolygon's ring type aliases aren't
// registered by the orb package itself, so the artefact format spells the
// rings out explicitly instead of depending on orb's internal layout.
type isochroneGobRecord struct {
	SpotID    string
	MaxMinute int
	MaxWalkM  int
	StartTime string
	Rings     [][][][2]float64 // polygon -> ring -> point -> [lon, lat]
	MeshCodes []int64          // reachable_mesh_list, carried verbatim
}

func toMultiPolygon(rings [][][][2]float64) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, len(rings))
	for i, poly := range rings {
		p := make(orb.Polygon, len(poly))
		for j, ring := range poly {
			ls := make(orb.Ring, len(ring))
			for k, pt := range ring {
				ls[k] = orb.Point{pt[0], pt[1]}
			}
			p[j] = ls
		}
		mp[i] = p
	}
	return mp
}

func fromMultiPolygon(mp orb.MultiPolygon) [][][][2]float64 {
	rings := make([][][][2]float64, len(mp))
	for i, p := range mp {
		poly := make([][][2]float64, len(p))
		for j, ring := range p {
			ls := make([][2]float64, len(ring))
			for k, pt := range ring {
				ls[k] = [2]float64{pt[0], pt[1]}
			}
			poly[j] = ls
		}
		rings[i] = poly
	}
	return rings
}

func loadIsochrones(a *Accessor, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil // isochrone artefacts are optional until precomputed
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var rows []isochroneGobRecord
	if err := gob.NewDecoder(f).Decode(&rows); err != nil {
		return err
	}
	for _, r := range rows {
		rec := IsochroneRecord{
			SpotID:    r.SpotID,
			MaxMinute: r.MaxMinute,
			MaxWalkM:  r.MaxWalkM,
			StartTime: r.StartTime,
			Polygon:   toMultiPolygon(r.Rings),
			MeshCodes: r.MeshCodes,
		}
		key := [2]string{rec.SpotID, rec.StartTime}
		a.isochronesBySpotStart[key] = append(a.isochronesBySpotStart[key], rec)
	}
	return nil
}

type storedRouteGobRecord struct {
	FromSpotID   string
	ToSpotID     string
	StartTime    string
	TotalTimeMin float64
	Polyline     string
}

func loadStoredRoutes(a *Accessor, path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	var rows []storedRouteGobRecord
	if err := gob.NewDecoder(f).Decode(&rows); err != nil {
		return err
	}
	for _, r := range rows {
		key := [3]string{r.FromSpotID, r.ToSpotID, r.StartTime}
		a.storedRoutes[key] = StoredRoute{
			FromSpotID:   r.FromSpotID,
			ToSpotID:     r.ToSpotID,
			StartTime:    r.StartTime,
			TotalTimeMin: r.TotalTimeMin,
			Polyline:     r.Polyline,
		}
	}
	return nil
}
