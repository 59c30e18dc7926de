package geo

import (
	"github.com/twpayne/go-polyline"
)

// DecodePolyline decodes a Google-encoded polyline into an ordered list of
// coordinates.
func DecodePolyline(encoded string) ([]Coord, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	out := make([]Coord, len(coords))
	for i, c := range coords {
		out[i] = Coord{Lat: c[0], Lon: c[1]}
	}
	return out, nil
}

// EncodePolyline encodes an ordered list of coordinates as a Google-encoded
// polyline.
func EncodePolyline(coords []Coord) string {
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(pairs))
}

// MergePolylines concatenates two encoded polylines, decoding both,
// appending the second sequence after the first, and dropping an exact
// duplicate join point (the end of a equals the start of b) before
// re-encoding.
func MergePolylines(a, b string) (string, error) {
	da, err := DecodePolyline(a)
	if err != nil {
		return "", err
	}
	db, err := DecodePolyline(b)
	if err != nil {
		return "", err
	}
	if len(da) == 0 {
		return EncodePolyline(db), nil
	}
	if len(db) == 0 {
		return EncodePolyline(da), nil
	}
	merged := make([]Coord, 0, len(da)+len(db))
	merged = append(merged, da...)
	last := da[len(da)-1]
	first := db[0]
	if last == first {
		merged = append(merged, db[1:]...)
	} else {
		merged = append(merged, db...)
	}
	return EncodePolyline(merged), nil
}

// MergePolylineSequence folds MergePolylines over an ordered sequence of
// encoded polylines, used when assembling multi-leg combus edges.
func MergePolylineSequence(polylines []string) (string, error) {
	if len(polylines) == 0 {
		return "", nil
	}
	acc := polylines[0]
	for _, p := range polylines[1:] {
		merged, err := MergePolylines(acc, p)
		if err != nil {
			return "", err
		}
		acc = merged
	}
	return acc, nil
}
