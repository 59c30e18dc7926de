package roadnet

import "github.com/coins-dawn/prometheus/internal/geo"

// BuildCarRoute runs the full bus-line-design pipeline: loop construction
// (FindRouteThroughStops) followed by timetable synthesis, and assembles the
// finished CarRoute (spec.md §3, §4.C).
//
// startTimes supplies one wall-clock departure per circuit for stop 0
// (length circuitCount). When a single start time is supplied instead of a
// full schedule, DeriveStartTimes expands it into circuitCount evenly
// spaced departures at the loop's total period T — this is spec.md §4.C's
// "start + j*T" formula. When the caller supplies an explicit list (as
// original_source/prometheus/input.py's CarRequest.start_time_list does),
// that list is used directly and each entry need not be evenly spaced: this
// is what scenario A in spec.md §8 exercises (start_time_list =
// ["10:00","11:00","13:00"] yields exactly those three departures for
// stop 0).
func BuildCarRoute(stops []Stop, startTimes []string, g *Graph) (*CarRoute, error) {
	sections, err := g.FindRouteThroughStops(stops)
	if err != nil {
		return nil, err
	}

	circuitCount := len(startTimes)
	legOffsets := cumulativeLegOffsets(sections)

	stopEntries := make([]StopEntry, len(stops))
	for i, s := range stops {
		departures := make([]string, circuitCount)
		for j, start := range startTimes {
			departures[j], err = geo.AddMinutes(start, legOffsets[i])
			if err != nil {
				return nil, err
			}
		}
		stopEntries[i] = StopEntry{
			Stop:           s,
			StayTimeMin:    stayTimePerStopMin,
			DepartureTimes: departures,
		}
	}

	var totalDistance float64
	var totalDuration int
	for _, sec := range sections {
		totalDistance += sec.DistanceM
		totalDuration += sec.DurationMin
	}
	totalDuration += len(stops) * stayTimePerStopMin

	return &CarRoute{
		TotalDistanceM: totalDistance,
		TotalDurationM: totalDuration,
		Stops:          stopEntries,
		Sections:       sections,
	}, nil
}

// cumulativeLegOffsets returns, for each stop index i, the cumulative
// duration (leg duration + stay time) from stop 0 up to (but not including)
// stop i — the offset departure_matrix adds to the base start time.
func cumulativeLegOffsets(sections []Section) []int {
	offsets := make([]int, len(sections))
	acc := 0
	for i, sec := range sections {
		offsets[i] = acc
		acc += sec.DurationMin + stayTimePerStopMin
	}
	return offsets
}

// DeriveStartTimes expands a single base start time into circuitCount
// evenly spaced departures at the loop's full period T = sum of all leg
// durations and stay times (spec.md §4.C / §8 invariant 3).
func DeriveStartTimes(baseStartTime string, sections []Section, numStops, circuitCount int) ([]string, error) {
	period := 0
	for _, sec := range sections {
		period += sec.DurationMin
	}
	period += numStops * stayTimePerStopMin

	times := make([]string, circuitCount)
	for j := 0; j < circuitCount; j++ {
		t, err := geo.AddMinutes(baseStartTime, j*period)
		if err != nil {
			return nil, err
		}
		times[j] = t
	}
	return times, nil
}
