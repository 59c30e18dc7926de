// Package reachability implements the reachability engine (component F):
// precomputed isochrone union/difference between an original and a
// with-combus scenario, and mesh-population scoring over the resulting
// diff region.
package reachability

import (
	"github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
)

func toPolyclip(mp orb.MultiPolygon) polyclip.Polygon {
	poly := make(polyclip.Polygon, 0, len(mp))
	for _, p := range mp {
		if len(p) == 0 {
			continue
		}
		outer := p[0] // holes are not tracked; see MakeValid doc comment.
		contour := make(polyclip.Contour, len(outer))
		for i, pt := range outer {
			contour[i] = polyclip.Point{X: pt[0], Y: pt[1]}
		}
		poly = append(poly, contour)
	}
	return poly
}

func fromPolyclip(poly polyclip.Polygon) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(poly))
	for _, contour := range poly {
		if len(contour) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(contour)+1)
		for _, pt := range contour {
			ring = append(ring, orb.Point{pt.X, pt.Y})
		}
		if ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		mp = append(mp, orb.Polygon{ring})
	}
	return mp
}

// Union returns the set union of two (possibly empty) isochrone regions.
func Union(a, b orb.MultiPolygon) orb.MultiPolygon {
	switch {
	case len(a) == 0:
		return b
	case len(b) == 0:
		return a
	}
	return fromPolyclip(toPolyclip(a).Construct(polyclip.UNION, toPolyclip(b)))
}

// Diff returns the region covered by b but not by a (the mobility-impact
// region a with-combus scenario newly reaches).
func Diff(a, b orb.MultiPolygon) orb.MultiPolygon {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return nil
	}
	return fromPolyclip(toPolyclip(b).Construct(polyclip.DIFFERENCE, toPolyclip(a)))
}

// MakeValid keeps only each polygon's outer ring (holes are dropped), drops
// degenerate rings (fewer than 4 points, or zero signed area) and closes any
// ring left open by upstream precomputation —
// the coercion original_source/prometheus/area/area_searcher.py's
// _to_multipolygon performs on Shapely's make_valid output before handing
// a MultiPolygon back to the caller. No pack library exposes a turnkey
// validity-repair routine, so this stays a small routine directly against
// orb types rather than a dependency.
func MakeValid(mp orb.MultiPolygon) orb.MultiPolygon {
	out := make(orb.MultiPolygon, 0, len(mp))
	for _, p := range mp {
		if len(p) == 0 {
			continue
		}
		ring := p[0]
		if len(ring) < 4 || signedArea(ring) == 0 {
			continue
		}
		if ring[0] != ring[len(ring)-1] {
			ring = append(append(orb.Ring{}, ring...), ring[0])
		}
		out = append(out, orb.Polygon{ring})
	}
	return out
}

func signedArea(ring orb.Ring) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// Contains reports whether pt falls within mp (even-odd ray casting over
// every outer ring; sufficient since MakeValid strips holes). Points lying
// exactly on a ring's boundary are not consistently reported as inside.
func Contains(mp orb.MultiPolygon, pt orb.Point) bool {
	for _, p := range mp {
		if len(p) == 0 {
			continue
		}
		if ringContains(p[0], pt) {
			return true
		}
	}
	return false
}

func ringContains(ring orb.Ring, pt orb.Point) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		intersects := (yi > pt[1]) != (yj > pt[1]) &&
			pt[0] < (xj-xi)*(pt[1]-yi)/(yj-yi)+xi
		if intersects {
			inside = !inside
		}
	}
	return inside
}
