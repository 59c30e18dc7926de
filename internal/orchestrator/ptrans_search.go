package orchestrator

import (
	"github.com/coins-dawn/prometheus/internal/combus"
	"github.com/coins-dawn/prometheus/internal/ptrans"
)

// anchorCandidateCount is spec.md §4.E's find_nearest(coord, k=10).
const anchorCandidateCount = 10

// SearchPtrans drives the Combus Bridge (when a candidate CarRoute is
// supplied) and the Public-Transit Engine end to end for one request: the
// whole inject -> search -> trace -> clear cycle runs inside a single
// Engine.WithRequest window so the injected combus line and anchors are
// never visible to a concurrent request.
func (o *Orchestrator) SearchPtrans(req PtransSearchRequest) (*ptrans.Itinerary, error) {
	var itinerary *ptrans.Itinerary

	err := o.transit.WithRequest(func(e *ptrans.Engine) error {
		if req.CarOutput != nil {
			nodes, edges, err := combus.Build(*req.CarOutput)
			if err != nil {
				return err
			}
			e.InjectCombus(nodes, toCombusEdgeInputs(edges), o.cfg.WalkSpeedMPerMin, o.cfg.MaxWalkMinutes)
		}

		e.InjectAnchors(req.Start, req.Goal, anchorCandidateCount, o.cfg.WalkSpeedMPerMin)

		result, err := e.Search(ptrans.StartNodeID, ptrans.GoalNodeID, req.StartTime)
		if err != nil {
			return err
		}
		var traceErr error
		itinerary, traceErr = e.Trace(result)
		return traceErr
	})
	if err != nil {
		return nil, err
	}
	return itinerary, nil
}

// toCombusEdgeInputs converts the Combus Bridge's output into the shape
// Engine.InjectCombus expects; the field sets are identical, this just
// keeps ptrans independent of the combus package (combus -> ptrans is the
// only allowed direction).
func toCombusEdgeInputs(edges []combus.CombusEdge) []ptrans.CombusEdgeInput {
	out := make([]ptrans.CombusEdgeInput, len(edges))
	for i, e := range edges {
		out[i] = ptrans.CombusEdgeInput{
			From:        e.From,
			To:          e.To,
			DurationMin: e.DurationMin,
			DisplayName: e.DisplayName,
			Polyline:    e.Polyline,
			TimeTable:   e.TimeTable,
		}
	}
	return out
}
