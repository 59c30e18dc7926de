package orchestrator

import (
	"github.com/paulmach/orb"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/odselect"
	"github.com/coins-dawn/prometheus/internal/ptrans"
	"github.com/coins-dawn/prometheus/internal/reachability"
)

// topKRoutePairs is spec.md §4.G step 4's fixed spread-selection width.
const topKRoutePairs = 3

// AreaSearch drives the Reachability Engine and OD-Pair Selector for one
// area/impact request (spec.md §2's area/impact flow): compute the
// reachable area with and without the candidate combus line, extract the
// newly-reached diff region, score it, and select up to topKRoutePairs
// representative origin/destination pairs the new line makes feasible.
func (o *Orchestrator) AreaSearch(req AreaSearchRequest) (*AreaSearchResult, error) {
	spots, err := o.resolveTargetSpots(req)
	if err != nil {
		return nil, err
	}

	var originalUnion, withCombusUnion reachability.Region
	for _, spot := range spots {
		orig, err := reachability.OriginalReachable(o.acc, spot.SpotID, req.MaxMinute, req.MaxWalkM, req.StartTime)
		if err != nil {
			return nil, err
		}
		originalUnion = reachability.UnionRegion(originalUnion, orig)

		withCombus, err := reachability.WithCombusReachable(o.acc, spot.SpotID, req.MaxMinute, req.MaxWalkM, req.StartTime, req.CombusStopIDs)
		if err != nil {
			return nil, err
		}
		withCombusUnion = reachability.UnionRegion(withCombusUnion, withCombus)
	}

	diff := reachability.DiffRegion(originalUnion, withCombusUnion)

	originalScore, _ := reachability.ScoreMeshes(o.acc, originalUnion.Meshes)
	withCombusScore, _ := reachability.ScoreMeshes(o.acc, withCombusUnion.Meshes)
	diffScore, _ := reachability.ScoreMeshes(o.acc, diff.Meshes)

	var totalPopulation int
	for _, m := range o.acc.Meshes() {
		totalPopulation += m.Population
	}
	var rate float64
	if totalPopulation > 0 {
		rate = 100 * float64(withCombusScore) / float64(totalPopulation)
	}

	var combusNodes []ptrans.TransitNode
	var combusEdges []ptrans.CombusEdgeInput
	if len(req.CombusStopIDs) > 0 {
		combusNodes, combusEdges, err = buildPrecomputedCombusEdges(o.acc, req.CombusStopIDs)
		if err != nil {
			return nil, err
		}
	}

	pairs, err := o.selectRoutePairs(req, spots, diff.Polygon, combusNodes, combusEdges)
	if err != nil {
		return nil, err
	}

	return &AreaSearchResult{
		Reachable: ReachableSummary{
			OriginalScore:       originalScore,
			WithCombusScore:     withCombusScore,
			DiffScore:           diffScore,
			WithCombusScoreRate: rate,
		},
		RoutePairs: pairs,
		Combus:     CombusPreview{Nodes: combusNodes, Edges: combusEdges},
	}, nil
}

func (o *Orchestrator) resolveTargetSpots(req AreaSearchRequest) ([]dataaccess.Spot, error) {
	switch {
	case req.TargetSpotID != "":
		spot, ok := o.acc.SpotByID(req.TargetSpotID)
		if !ok {
			return nil, apperr.New(apperr.MalformedInput, "unknown target spot id %q", req.TargetSpotID)
		}
		return []dataaccess.Spot{spot}, nil
	case req.TargetSpotType != "":
		spots := o.acc.SpotsByCategory(req.TargetSpotType)
		if len(spots) == 0 {
			return nil, apperr.New(apperr.MalformedInput, "unknown target spot type %q", req.TargetSpotType)
		}
		return spots, nil
	default:
		return nil, apperr.New(apperr.MalformedInput, "one of target-spot or target-spot-type is required")
	}
}

// selectRoutePairs implements spec.md §4.G steps 1-5: filter the global
// reference points to those inside the diff polygon, compute each one's
// best original and with-combus route, keep the ones the combus line
// newly makes feasible, then spread-sample the top k.
func (o *Orchestrator) selectRoutePairs(req AreaSearchRequest, spots []dataaccess.Spot, diff orb.MultiPolygon, combusNodes []ptrans.TransitNode, combusEdges []ptrans.CombusEdgeInput) ([]odselect.DisplayPair, error) {
	filtered := odselect.FilterRefPoints(o.acc.RefPoints(), diff)

	var candidates []odselect.RoutePair
	var originNames []string

	for _, r := range filtered {
		bestSpot, summary, ok := bestOriginalSummary(o.acc, spots, r.RefID)
		if !ok {
			continue
		}

		storedRoute, _ := o.acc.LoadRoute(bestSpot.SpotID, r.RefID, req.StartTime)
		originalRoute := odselect.Route{
			TotalDurationMin: summary.TotalTimeMin,
			WalkDistanceM:    summary.WalkM,
			Polyline:         storedRoute.Polyline,
		}

		var withCombusRoute odselect.Route
		if len(combusNodes) > 0 {
			route, err := o.withCombusRoute(bestSpot, r, req, combusNodes, combusEdges)
			if err != nil {
				return nil, err
			}
			withCombusRoute = route
		}

		pair := odselect.RoutePair{
			RefID:           r.RefID,
			RefName:         r.RefID,
			DestCoord:       r.Coord,
			OriginalRoute:   originalRoute,
			OriginalWalkM:   summary.WalkM,
			WithCombusRoute: withCombusRoute,
			WithCombusWalkM: withCombusRoute.WalkDistanceM,
		}

		if odselect.IsFeasible(pair, float64(req.MaxMinute), float64(req.MaxWalkM)) {
			candidates = append(candidates, pair)
			originNames = append(originNames, bestSpot.Name)
		}
	}

	top := odselect.SelectTopK(candidates, topKRoutePairs)

	out := make([]odselect.DisplayPair, 0, len(top))
	for _, pair := range top {
		idx := indexOfRoutePair(candidates, pair)
		originName := ""
		if idx >= 0 {
			originName = originNames[idx]
		}
		out = append(out, odselect.NormalizeDisplayNames([]odselect.RoutePair{pair}, originName)[0])
	}
	return out, nil
}

// bestOriginalSummary picks the spot in the target group with the smallest
// precomputed duration to refID (spec.md §4.G step 2, "original route").
func bestOriginalSummary(acc *dataaccess.Accessor, spots []dataaccess.Spot, refID string) (dataaccess.Spot, dataaccess.SpotToSpotSummary, bool) {
	var best dataaccess.Spot
	var bestSummary dataaccess.SpotToSpotSummary
	found := false

	for _, spot := range spots {
		summary, ok := acc.SpotToSpotSummary(spot.SpotID, refID)
		if !ok {
			continue
		}
		if !found || summary.TotalTimeMin < bestSummary.TotalTimeMin {
			best, bestSummary, found = spot, summary, true
		}
	}
	return best, bestSummary, found
}

// withCombusRoute runs one time-dependent transit search from a target
// spot to a reference point with the candidate combus line injected,
// delegating the (spot, enter-stop, exit-stop) enumeration of spec.md
// §4.G step 2 to the search itself rather than re-implementing it as a
// bespoke combinatorial loop (see DESIGN.md).
func (o *Orchestrator) withCombusRoute(spot dataaccess.Spot, r dataaccess.RefPoint, req AreaSearchRequest, combusNodes []ptrans.TransitNode, combusEdges []ptrans.CombusEdgeInput) (odselect.Route, error) {
	var itinerary *ptrans.Itinerary

	err := o.transit.WithRequest(func(e *ptrans.Engine) error {
		e.InjectCombus(combusNodes, combusEdges, o.cfg.WalkSpeedMPerMin, o.cfg.MaxWalkMinutes)
		e.InjectAnchors(spot.Coord, r.Coord, anchorCandidateCount, o.cfg.WalkSpeedMPerMin)

		result, err := e.Search(ptrans.StartNodeID, ptrans.GoalNodeID, req.StartTime)
		if err != nil {
			return err
		}
		var traceErr error
		itinerary, traceErr = e.Trace(result)
		return traceErr
	})
	if err != nil {
		if apperr.IsKind(err, apperr.NoTransitPath) || apperr.IsKind(err, apperr.LastBusMissed) {
			return odselect.Route{TotalDurationMin: missedRouteDurationMin}, nil
		}
		return odselect.Route{}, err
	}

	legs := make([]odselect.RouteLeg, len(itinerary.Legs))
	for i, leg := range itinerary.Legs {
		distanceM := 0.0
		if leg.Kind == ptrans.Walk {
			distanceM = leg.TravelTimeMin * o.cfg.WalkSpeedMPerMin
		}
		legs[i] = odselect.RouteLeg{Kind: leg.Kind, DistanceM: distanceM, DurationMin: leg.TravelTimeMin, Polyline: leg.Polyline}
	}

	route, err := odselect.MergeLegs(legs)
	if err != nil {
		return odselect.Route{}, err
	}
	// The merged duration sums per-leg travel time only; the itinerary's
	// total includes scheduled wait time, which is the figure the
	// max-minute budget actually gates against.
	route.TotalDurationMin = itinerary.TotalTimeMin
	return route, nil
}

// missedRouteDurationMin is a duration guaranteed to exceed any max-minute
// budget, used when no transit path exists at all so the pair is reported
// infeasible rather than propagating a hard search error (an unreachable
// reference point from one spot is an expected outcome of a spread scan,
// not a request-level failure).
const missedRouteDurationMin = 1 << 20

func indexOfRoutePair(pairs []odselect.RoutePair, target odselect.RoutePair) int {
	for i, p := range pairs {
		if p.RefID == target.RefID {
			return i
		}
	}
	return -1
}
