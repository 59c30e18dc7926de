package ptrans

import (
	"math"

	"github.com/coins-dawn/prometheus/internal/apperr"
)

// minWalkDurationMin is the floor applied to a traced WALK leg's duration
// (spec.md §4.E's tracer: "WALK: duration = edge minutes (floor to ≥1)").
const minWalkDurationMin = 1.0

// Leg is one edge of a traced itinerary, annotated with the presentation
// detail a client needs to render it (spec.md §4.E's trace output).
type Leg struct {
	From          string
	To            string
	FromName      string
	ToName        string
	Kind          EdgeKind
	DisplayName   string
	Polyline      string
	DepartureMin  float64
	ArrivalMin    float64
	TravelTimeMin float64
}

// Itinerary is a traced end-to-end result of one Search.
type Itinerary struct {
	Legs         []Leg
	TotalTimeMin float64
	DepartureMin float64
	ArrivalMin   float64
}

// Trace converts a SearchResult's node sequence into a full itinerary,
// re-deriving each leg's boarding time from the schedule rather than
// reusing the search's node-arrival costs directly (spec.md §4.E): a
// WALK leg departs at the current time and its duration floors to at
// least one minute; a BUS/COMBUS leg departs at the edge's next
// scheduled departure at-or-after the current time. Current time then
// advances monotonically to that leg's arrival for the next leg. Must be
// called from inside the same Engine.WithRequest window that produced
// result, since any injected combus/anchor edges it references only
// exist until that window's clear() runs.
func (e *Engine) Trace(result *SearchResult) (*Itinerary, error) {
	g := e.g
	legs := make([]Leg, 0, len(result.NodeSeq)-1)

	current := 0.0
	if len(result.ArrivalMin) > 0 {
		current = result.ArrivalMin[0]
	}

	for i := 0; i+1 < len(result.NodeSeq); i++ {
		from, to := result.NodeSeq[i], result.NodeSeq[i+1]
		detail, _ := g.EdgeDetailOf(from, to)
		fromNode, _ := g.Node(from)
		toNode, _ := g.Node(to)

		var departure, duration float64
		if detail.Kind == Walk {
			departure = current
			duration = math.Max(minWalkDurationMin, math.Floor(detail.TravelTimeMin))
		} else {
			wait, ok := waitMinutes(g, from, to, current)
			if !ok {
				return nil, apperr.New(apperr.LastBusMissed, "no remaining departure for %s -> %s at minute %.0f", from, to, current)
			}
			departure = current + wait
			duration = detail.TravelTimeMin
		}
		arrival := departure + duration

		legs = append(legs, Leg{
			From:          from,
			To:            to,
			FromName:      fromNode.Name,
			ToName:        toNode.Name,
			Kind:          detail.Kind,
			DisplayName:   detail.DisplayName,
			Polyline:      detail.Polyline,
			DepartureMin:  departure,
			ArrivalMin:    arrival,
			TravelTimeMin: duration,
		})
		current = arrival
	}

	it := &Itinerary{Legs: legs}
	if len(legs) > 0 {
		it.DepartureMin = legs[0].DepartureMin
		it.ArrivalMin = legs[len(legs)-1].ArrivalMin
		it.TotalTimeMin = it.ArrivalMin - it.DepartureMin
	}
	return it, nil
}
