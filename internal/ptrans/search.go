package ptrans

import (
	"container/heap"
	"math"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/geo"
)

// missedConnectionPenaltyMin is the sentinel wait cost applied when a
// scheduled edge has no remaining departure for the rest of the operating
// day (spec.md's LAST_BUS_MISSED case: absorbed into the cost rather than
// failing the search outright).
const missedConnectionPenaltyMin = 10000.0

// consecutiveWalkPenaltyMin discourages WALK -> WALK transfers (spec.md
// §4.E: "a path should not walk, then immediately walk again").
const consecutiveWalkPenaltyMin = 10000.0

// SearchResult is one end-to-end itinerary: the ordered node path and the
// absolute arrival time (minutes since the operating day's midnight,
// uncapped so a path crossing midnight keeps accumulating) at each node.
type SearchResult struct {
	NodeSeq    []string
	ArrivalMin []float64
}

type searchPQItem struct {
	node    string
	arrival float64
	mode    EdgeKind
	seq     int
}

type searchPQ []*searchPQItem

func (pq searchPQ) Len() int { return len(pq) }
func (pq searchPQ) Less(i, j int) bool {
	if pq[i].arrival != pq[j].arrival {
		return pq[i].arrival < pq[j].arrival
	}
	return pq[i].seq < pq[j].seq
}
func (pq searchPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *searchPQ) Push(x any)   { *pq = append(*pq, x.(*searchPQItem)) }
func (pq *searchPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Search runs the time-dependent shortest-arrival-time search from
// startID to goalID, departing no earlier than startTime ("HH:MM").
// The cost of an edge is the absolute arrival time at its destination:
// boarding a scheduled (BUS/COMBUS) edge first waits until the next
// departure at-or-after the current time (or the missed-connection
// sentinel if none remains today), then adds the edge's travel time;
// WALK edges have no wait but incur a penalty when chained after another
// WALK edge. The search terminates the moment GOAL is popped, which is
// the first time its arrival time is final (spec.md §4.E).
func (e *Engine) Search(startID, goalID, startTime string) (*SearchResult, error) {
	g := e.g
	startMin, err := geo.ParseHHMM(startTime)
	if err != nil {
		return nil, apperr.New(apperr.MalformedInput, "invalid start time %q: %v", startTime, err)
	}

	arrival := map[string]float64{startID: float64(startMin)}
	prevNode := map[string]string{}
	prevMode := map[string]EdgeKind{startID: ""}

	pq := &searchPQ{{node: startID, arrival: float64(startMin), mode: "", seq: 0}}
	heap.Init(pq)
	seq := 1

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*searchPQItem)
		u := item.node

		if best, seen := arrival[u]; seen && item.arrival > best {
			continue
		}

		if u == goalID {
			return e.traceSeq(prevNode, arrival, startID, goalID), nil
		}

		for _, adj := range g.Adjacency(u) {
			wait, ok := waitMinutes(g, u, adj.Dst, arrival[u])
			if !ok {
				wait = missedConnectionPenaltyMin
			}

			penalty := 0.0
			if adj.Kind == Walk && item.mode == Walk {
				penalty = consecutiveWalkPenaltyMin
			}

			newArrival := arrival[u] + wait + adj.CostMin + penalty
			if existing, seen := arrival[adj.Dst]; !seen || newArrival < existing {
				arrival[adj.Dst] = newArrival
				prevNode[adj.Dst] = u
				prevMode[adj.Dst] = adj.Kind
				heap.Push(pq, &searchPQItem{node: adj.Dst, arrival: newArrival, mode: adj.Kind, seq: seq})
				seq++
			}
		}
	}

	return nil, apperr.New(apperr.NoTransitPath, "no transit path from %s to %s", startID, goalID)
}

// waitMinutes returns how long to wait at u before boarding the edge to v,
// given the edge's timetable (if any) and the current absolute arrival
// time at u. ok is false when the edge has no timetable entry remaining
// for the rest of the operating day.
func waitMinutes(g *Graph, u, v string, currentArrival float64) (wait float64, ok bool) {
	tt, hasTT := g.TimeTableOf(u, v)
	if !hasTT || len(tt.WeekdayTimes) == 0 {
		return 0, true
	}

	dayOffset := math.Floor(currentArrival/float64(geo.MinutesPerDay)) * float64(geo.MinutesPerDay)
	timeOfDay := currentArrival - dayOffset

	for _, t := range tt.WeekdayTimes {
		m, err := geo.ParseHHMM(t)
		if err != nil {
			continue
		}
		if float64(m) >= timeOfDay {
			return dayOffset + float64(m) - currentArrival, true
		}
	}
	return 0, false
}

func (e *Engine) traceSeq(prevNode map[string]string, arrival map[string]float64, startID, goalID string) *SearchResult {
	seq := []string{goalID}
	node := goalID
	for node != startID {
		node = prevNode[node]
		seq = append(seq, node)
	}
	for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = seq[j], seq[i]
	}

	arrivals := make([]float64, len(seq))
	for i, n := range seq {
		arrivals[i] = arrival[n]
	}
	return &SearchResult{NodeSeq: seq, ArrivalMin: arrivals}
}
