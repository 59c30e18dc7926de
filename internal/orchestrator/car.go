package orchestrator

import "github.com/coins-dawn/prometheus/internal/roadnet"

// SearchCar drives the Road-network Engine end to end (spec.md §2's
// bus-line-design flow): resolve the loop, derive one evenly-spaced
// departure per circuit from the single requested start time, and
// assemble the finished CarRoute.
func (o *Orchestrator) SearchCar(req CarSearchRequest) (*CarSearchResult, error) {
	sections, err := o.roadGraph.FindRouteThroughStops(req.Stops)
	if err != nil {
		return nil, err
	}

	startTimes, err := roadnet.DeriveStartTimes(req.StartTime, sections, len(req.Stops), o.cfg.CircuitCount)
	if err != nil {
		return nil, err
	}

	route, err := roadnet.BuildCarRoute(req.Stops, startTimes, o.roadGraph)
	if err != nil {
		return nil, err
	}

	return &CarSearchResult{Status: "ok", Result: *route}, nil
}
