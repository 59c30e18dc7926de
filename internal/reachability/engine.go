package reachability

import (
	"github.com/paulmach/orb"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
)

// combusStopDepartureTime is the fixed departure time assumed when
// evaluating how far a newly added combus stop itself reaches, per
// spec.md §4.F ("assume a 10:00 departure from every combus stop").
const combusStopDepartureTime = "10:00"

// Region bundles an isochrone-derived polygon with its exact reachable-mesh
// set — the pair spec.md §3's Isochrone record carries together, so every
// union/diff this engine performs keeps the two in lockstep instead of
// re-deriving mesh membership from the geometry afterwards.
type Region struct {
	Polygon orb.MultiPolygon
	Meshes  MeshSet
}

// UnionRegion merges two regions' polygons and mesh sets together.
func UnionRegion(a, b Region) Region {
	return Region{Polygon: Union(a.Polygon, b.Polygon), Meshes: UnionMeshSet(a.Meshes, b.Meshes)}
}

// OriginalReachable looks up the precomputed isochrone for one spot at the
// given time budget, applying the accessor's fallback-quantisation and
// repairing its geometry via MakeValid.
func OriginalReachable(acc *dataaccess.Accessor, spotID string, minute, walkM int, startTime string) (Region, error) {
	rec, ok := acc.LoadGeoJSON(spotID, minute, walkM, startTime)
	if !ok {
		return Region{}, apperr.New(apperr.DataNotFound, "no isochrone data for spot %q at (%d min, %d m, %s)", spotID, minute, walkM, startTime)
	}
	return Region{Polygon: MakeValid(rec.Polygon), Meshes: NewMeshSet(rec.MeshCodes)}, nil
}

// combusLine is a candidate combus line's circular stop sequence with each
// hop's precomputed duration: durationMin[i] is the travel time from
// stopIDs[i] to stopIDs[(i+1)%n], mirroring original_source/prometheus/
// area/area_searcher.py's CombusRoute(stop_list, section_list).
type combusLine struct {
	stopIDs     []string
	durationMin []float64
}

// loadCombusLine resolves every hop of an ordered candidate stop sequence
// against the precomputed combus-route segment table, closing the loop
// from the last stop back to the first.
func loadCombusLine(acc *dataaccess.Accessor, stopIDs []string) (combusLine, error) {
	n := len(stopIDs)
	durations := make([]float64, n)
	for i := 0; i < n; i++ {
		from, to := stopIDs[i], stopIDs[(i+1)%n]
		seg, ok := acc.CombusRouteSegment(from, to)
		if !ok {
			return combusLine{}, apperr.New(apperr.DataNotFound, "no precomputed combus route segment %s -> %s", from, to)
		}
		durations[i] = seg.DurationMin
	}
	return combusLine{stopIDs: stopIDs, durationMin: durations}, nil
}

// hopReachable walks forward from stopIndex along the line, subtracting
// each section's duration from the remaining time budget, and merges the
// isochrone (geometry and mesh set together) of every subsequent stop
// reached with at least 10 minutes of budget left (spec.md §4.F's
// hop-by-hop propagation rule).
func hopReachable(acc *dataaccess.Accessor, line combusLine, stopIndex int, remainingMin float64, remainingWalkM int) Region {
	n := len(line.stopIDs)
	region := Region{}
	current := stopIndex
	for {
		remainingMin -= line.durationMin[current]
		if remainingMin < 10 {
			break
		}
		next := (current + 1) % n
		if rec, ok := acc.LoadGeoJSON(line.stopIDs[next], int(remainingMin), remainingWalkM, combusStopDepartureTime); ok {
			region = UnionRegion(region, Region{Polygon: MakeValid(rec.Polygon), Meshes: NewMeshSet(rec.MeshCodes)})
		}
		current = next
	}
	return region
}

// WithCombusReachable computes the reachable region once the candidate
// combus line (stopIDs, in circular stop-sequence order) is introduced.
// For every stop on the line with a precomputed (spot, stop) OD summary,
// the remaining time and walk budget after reaching that stop gates
// whether the hop-by-hop propagation along the rest of the line (see
// hopReachable) contributes anything further.
func WithCombusReachable(acc *dataaccess.Accessor, spotID string, minute, walkM int, startTime string, stopIDs []string) (Region, error) {
	region, err := OriginalReachable(acc, spotID, minute, walkM, startTime)
	if err != nil {
		return Region{}, err
	}
	if len(stopIDs) == 0 {
		return region, nil
	}

	line, err := loadCombusLine(acc, stopIDs)
	if err != nil {
		return Region{}, err
	}

	for i, stopID := range stopIDs {
		summary, ok := acc.SpotToSpotSummary(spotID, stopID)
		if !ok {
			continue
		}
		remainingWalkM := float64(walkM) - summary.WalkM
		if remainingWalkM <= 0 {
			continue
		}
		remainingMin := float64(minute) - summary.TotalTimeMin
		if remainingMin <= 0 {
			continue
		}

		region = UnionRegion(region, hopReachable(acc, line, i, remainingMin, int(remainingWalkM)))
	}
	return Region{Polygon: MakeValid(region.Polygon), Meshes: region.Meshes}, nil
}

// DiffRegion returns the area (and mesh set) the with-combus scenario newly
// reaches. Invariant 5's "with_combus_reachable.mesh_set ⊇
// original_reachable.mesh_set" holds because WithCombusReachable starts
// from the original region and only unions more into it.
func DiffRegion(original, withCombus Region) Region {
	return Region{
		Polygon: MakeValid(Diff(original.Polygon, withCombus.Polygon)),
		Meshes:  DiffMeshSet(original.Meshes, withCombus.Meshes),
	}
}

// ScoreMeshes sums the population of every loaded mesh cell whose code is a
// member of the reachable-mesh set (spec.md §4.F's mobility-impact
// population score: "the sum over a reachable mesh set", not a
// geometry-derived approximation).
func ScoreMeshes(acc *dataaccess.Accessor, meshes MeshSet) (total int, cells []dataaccess.MeshPopulation) {
	for _, m := range acc.Meshes() {
		if !meshes[m.MeshCode] {
			continue
		}
		total += m.Population
		cells = append(cells, m)
	}
	return total, cells
}
