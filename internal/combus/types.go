// Package combus implements the combus bridge (component D): it converts a
// completed road-network loop (roadnet.CarRoute) into transit-graph nodes
// and edges that the public-transit engine can inject for a single request.
package combus

import "github.com/coins-dawn/prometheus/internal/ptrans"

// CombusEdge is one combus hop in the transit graph: either a single-leg
// edge mirroring one road Section, or a multi-leg edge spanning several
// contiguous stops on the circular line (spec.md §3, §4.D).
type CombusEdge struct {
	From        string
	To          string
	DurationMin float64
	DisplayName string
	Polyline    string
	TimeTable   ptrans.TimeTable
}
