package roadnet

import (
	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/geo"
)

// FindNearest resolves a coordinate to the nearest road node: compute the
// coordinate's mesh code, scan that mesh bucket's candidates by haversine
// distance, and return the argmin.
//
// Per spec.md §4.C, an empty mesh bucket is a hard failure rather than a
// fallback to a full-graph scan — original_source/prometheus/car_searcher.py
// falls back to scanning every node when the bucket is empty, but spec.md
// explicitly narrows this to a 4xx; see DESIGN.md for the resolution.
func (g *Graph) FindNearest(c geo.Coord) (int64, error) {
	mesh := geo.LatLonToMesh(c)
	candidates, ok := g.meshIndex[mesh]
	if !ok || len(candidates) == 0 {
		return 0, apperr.New(apperr.MalformedInput, "no road node in mesh %d for coord (%f,%f)", mesh, c.Lat, c.Lon)
	}

	best := candidates[0]
	bestDist := geo.HaversineMFloat(c, g.nodes[best].Coord)
	for _, id := range candidates[1:] {
		d := geo.HaversineMFloat(c, g.nodes[id].Coord)
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, nil
}
