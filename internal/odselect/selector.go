package odselect

import (
	"github.com/paulmach/orb"

	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/reachability"
)

// destinationDisplayName is the fixed label spec.md §4.G step 5 assigns to
// every selected pair's destination.
const destinationDisplayName = "目的地"

// FilterRefPoints keeps only the reference points whose coordinate falls
// inside the diff polygon (spec.md §4.G step 1).
func FilterRefPoints(refPoints []dataaccess.RefPoint, diff orb.MultiPolygon) []dataaccess.RefPoint {
	kept := make([]dataaccess.RefPoint, 0, len(refPoints))
	for _, r := range refPoints {
		if reachability.Contains(diff, orb.Point{r.Coord.Lon, r.Coord.Lat}) {
			kept = append(kept, r)
		}
	}
	return kept
}

// IsFeasible reports whether pair qualifies as a mobility improvement:
// the original route is infeasible (over time or walk budget) and the
// with-combus route is feasible (spec.md §4.G step 3).
func IsFeasible(pair RoutePair, maxMinute, maxWalkM float64) bool {
	originalInfeasible := pair.OriginalRoute.TotalDurationMin > maxMinute || pair.OriginalWalkM > maxWalkM
	withCombusFeasible := pair.WithCombusRoute.TotalDurationMin <= maxMinute && pair.WithCombusWalkM <= maxWalkM
	return originalInfeasible && withCombusFeasible
}

// SelectTopK picks up to k pairs by farthest-point sampling over haversine
// distance between destination coordinates (spec.md §4.G step 4): start
// with the candidate whose mean distance to all others is largest, then
// repeatedly add whichever remaining candidate's minimum distance to the
// selected set is largest. Ties are broken by enumeration order.
func SelectTopK(pairs []RoutePair, k int) []RoutePair {
	if len(pairs) <= k {
		return pairs
	}

	n := len(pairs)
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			dist[i][j] = geo.HaversineMFloat(pairs[i].DestCoord, pairs[j].DestCoord)
		}
	}

	selected := make([]int, 0, k)
	used := make([]bool, n)

	first := 0
	bestMean := -1.0
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += dist[i][j]
		}
		mean := sum / float64(n)
		if mean > bestMean {
			bestMean = mean
			first = i
		}
	}
	selected = append(selected, first)
	used[first] = true

	for len(selected) < k {
		next := -1
		bestMin := -1.0
		for i := 0; i < n; i++ {
			if used[i] {
				continue
			}
			minDist := dist[i][selected[0]]
			for _, s := range selected[1:] {
				if dist[i][s] < minDist {
					minDist = dist[i][s]
				}
			}
			if minDist > bestMin {
				bestMin = minDist
				next = i
			}
		}
		selected = append(selected, next)
		used[next] = true
	}

	out := make([]RoutePair, len(selected))
	for i, idx := range selected {
		out[i] = pairs[idx]
	}
	return out
}

// NormalizeDisplayNames labels every pair's destination "目的地" and its
// origin with startSpotName (spec.md §4.G step 5).
func NormalizeDisplayNames(pairs []RoutePair, startSpotName string) []DisplayPair {
	out := make([]DisplayPair, len(pairs))
	for i, p := range pairs {
		out[i] = DisplayPair{RoutePair: p, StartName: startSpotName, EndName: destinationDisplayName}
	}
	return out
}
