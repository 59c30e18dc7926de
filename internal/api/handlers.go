// Package api implements the HTTP surface (spec.md §6): thin fiber
// handlers that decode a request body, delegate to the request
// orchestrator, and re-encode its result — no routing or reachability
// logic lives here.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gotidy/ptr"

	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/cache"
	"github.com/coins-dawn/prometheus/internal/config"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/geo"
	"github.com/coins-dawn/prometheus/internal/orchestrator"
	"github.com/coins-dawn/prometheus/internal/roadnet"
)

// cacheLockWait is how long a request waits for an in-flight identical
// computation before giving up and computing it itself (the teacher's
// cache.WaitForLock budget, reused verbatim).
const cacheLockWait = 3 * time.Second

// cacheLockTTL bounds how long a holder may keep the computation lock
// before another waiter gives up and computes anyway.
const cacheLockTTL = 5 * time.Second

// Handlers wires the process-wide orchestrator and accessor into one
// fiber-ready handler set.
type Handlers struct {
	orch *orchestrator.Orchestrator
	acc  *dataaccess.Accessor
	cfg  *config.Config
}

// New builds a Handlers set.
func New(orch *orchestrator.Orchestrator, acc *dataaccess.Accessor, cfg *config.Config) *Handlers {
	return &Handlers{orch: orch, acc: acc, cfg: cfg}
}

// Health handles GET / (spec.md §6: "health, returns OK").
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.SendString("OK")
}

type carSearchRequest struct {
	RouteName string         `json:"route-name"`
	StartTime string         `json:"start-time"`
	Stops     []roadnet.Stop `json:"stops"`
}

// SearchCar handles POST /search/car.
func (h *Handlers) SearchCar(c *fiber.Ctx) error {
	var req carSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.MalformedInput, "malformed request body: %v", err)
	}
	if req.StartTime == "" {
		return apperr.New(apperr.MalformedInput, "start-time is required")
	}
	if len(req.Stops) < 2 {
		return apperr.New(apperr.MalformedInput, "stops must contain at least 2 entries")
	}

	result, err := h.orch.SearchCar(orchestrator.CarSearchRequest{
		RouteName: req.RouteName,
		StartTime: req.StartTime,
		Stops:     req.Stops,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status": result.Status,
		"result": result.Result,
	})
}

// carOutputFingerprint derives a short deterministic string from a
// candidate CarRoute for cache-key purposes, without hashing the whole
// polyline-bearing structure: two routes with the same distance, duration,
// and stop count are the same candidate line for caching purposes.
func carOutputFingerprint(route *roadnet.CarRoute) string {
	if route == nil {
		return ""
	}
	return fmt.Sprintf("%.1f|%d|%d|%d", route.TotalDistanceM, route.TotalDurationM, len(route.Stops), len(route.Sections))
}

type ptransSearchRequest struct {
	Start     geo.Coord         `json:"start"`
	Goal      geo.Coord         `json:"goal"`
	StartTime string            `json:"start-time"`
	CarOutput *roadnet.CarRoute `json:"car-output,omitempty"`
}

type sectionResponse struct {
	Kind          string  `json:"kind"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	FromName      string  `json:"from_name"`
	ToName        string  `json:"to_name"`
	DisplayName   string  `json:"display_name"`
	Polyline      string  `json:"polyline"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	DurationMin   float64 `json:"duration_min"`
}

// SearchPtrans handles POST /search/ptrans. Identical concurrent requests
// (same start/goal/start-time/car-output) share one computation via the
// cache-aside + distributed-lock pattern instead of each re-running the
// transit search.
func (h *Handlers) SearchPtrans(c *fiber.Ctx) error {
	var req ptransSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.MalformedInput, "malformed request body: %v", err)
	}
	if req.StartTime == "" {
		return apperr.New(apperr.MalformedInput, "start-time is required")
	}

	ctx := c.Context()
	cacheKey := cache.RouteKey(req.Start.Lat, req.Start.Lon, req.Goal.Lat, req.Goal.Lon, req.StartTime, carOutputFingerprint(req.CarOutput))

	var resp fiber.Map
	if hit, err := cache.Get(ctx, cacheKey, &resp); err == nil && hit {
		return c.JSON(resp)
	}

	acquired, lockErr := cache.AcquireLock(ctx, cache.LockKey(cacheKey), cacheLockTTL)
	if lockErr == nil && !acquired {
		if hit, err := cache.WaitForLock(ctx, cacheKey, cacheLockWait, &resp); err == nil && hit {
			return c.JSON(resp)
		}
	}
	if lockErr == nil && acquired {
		defer cache.ReleaseLock(ctx, cache.LockKey(cacheKey))
	}

	itinerary, err := h.orch.SearchPtrans(orchestrator.PtransSearchRequest{
		Start:     req.Start,
		Goal:      req.Goal,
		StartTime: req.StartTime,
		CarOutput: req.CarOutput,
	})
	if err != nil {
		return err
	}

	sections := make([]sectionResponse, len(itinerary.Legs))
	for i, leg := range itinerary.Legs {
		sections[i] = sectionResponse{
			Kind:          string(leg.Kind),
			From:          leg.From,
			To:            leg.To,
			FromName:      leg.FromName,
			ToName:        leg.ToName,
			DisplayName:   leg.DisplayName,
			Polyline:      leg.Polyline,
			DepartureTime: geo.FormatHHMM(int(leg.DepartureMin)),
			ArrivalTime:   geo.FormatHHMM(int(leg.ArrivalMin)),
			DurationMin:   leg.TravelTimeMin,
		}
	}

	resp = fiber.Map{
		"sections":   sections,
		"start_time": geo.FormatHHMM(int(itinerary.DepartureMin)),
		"goal_time":  geo.FormatHHMM(int(itinerary.ArrivalMin)),
		"duration":   itinerary.TotalTimeMin,
	}
	_ = cache.Set(ctx, cacheKey, resp, time.Duration(h.cfg.CacheTTLSeconds)*time.Second)

	return c.JSON(resp)
}

// defaultMaxWalkM is applied when max-walk-distance is omitted entirely
// (spec.md §6's range is [0, 1000], and 0 is itself a meaningful value —
// "no walking allowed" — so a missing field can't default to it).
const defaultMaxWalkM = 1000

type areaSearchRequest struct {
	TargetSpot     string   `json:"target-spot"`
	TargetSpotType string   `json:"target-spot-type"`
	MaxMinute      int      `json:"max-minute"`
	MaxWalkM       *int     `json:"max-walk-distance,omitempty"`
	StartTime      string   `json:"start-time"`
	CombusStops    []string `json:"combus-stops"`
}

// AreaSearch handles POST /area/search.
func (h *Handlers) AreaSearch(c *fiber.Ctx) error {
	var req areaSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.New(apperr.MalformedInput, "malformed request body: %v", err)
	}
	if req.TargetSpot == "" && req.TargetSpotType == "" {
		return apperr.New(apperr.MalformedInput, "one of target-spot or target-spot-type is required")
	}
	if req.MaxMinute <= 0 || req.MaxMinute > 120 {
		return apperr.New(apperr.MalformedInput, "max-minute must be in (0, 120], got %d", req.MaxMinute)
	}
	if req.MaxWalkM == nil {
		req.MaxWalkM = ptr.Int(defaultMaxWalkM)
	}
	maxWalkM := *req.MaxWalkM
	if maxWalkM < 0 || maxWalkM > 1000 {
		return apperr.New(apperr.MalformedInput, "max-walk-distance must be in [0, 1000], got %d", maxWalkM)
	}
	if req.StartTime == "" {
		return apperr.New(apperr.MalformedInput, "start-time is required")
	}

	ctx := c.Context()
	cacheKey := cache.IsochroneKey(append([]string{req.TargetSpot, req.TargetSpotType}, req.CombusStops...), req.MaxMinute, maxWalkM, req.StartTime)

	var resp fiber.Map
	if hit, err := cache.Get(ctx, cacheKey, &resp); err == nil && hit {
		return c.JSON(resp)
	}

	acquired, lockErr := cache.AcquireLock(ctx, cache.LockKey(cacheKey), cacheLockTTL)
	if lockErr == nil && !acquired {
		if hit, err := cache.WaitForLock(ctx, cacheKey, cacheLockWait, &resp); err == nil && hit {
			return c.JSON(resp)
		}
	}
	if lockErr == nil && acquired {
		defer cache.ReleaseLock(ctx, cache.LockKey(cacheKey))
	}

	result, err := h.orch.AreaSearch(orchestrator.AreaSearchRequest{
		TargetSpotID:   req.TargetSpot,
		TargetSpotType: req.TargetSpotType,
		MaxMinute:      req.MaxMinute,
		MaxWalkM:       maxWalkM,
		StartTime:      req.StartTime,
		CombusStopIDs:  req.CombusStops,
	})
	if err != nil {
		return err
	}

	resp = fiber.Map{
		"reachable": fiber.Map{
			"original":         result.Reachable.OriginalScore,
			"with_combus":      result.Reachable.WithCombusScore,
			"diff":             result.Reachable.DiffScore,
			"with_combus_rate": result.Reachable.WithCombusScoreRate,
		},
		"route-pairs": result.RoutePairs,
		"combus":      result.Combus,
	}
	_ = cache.Set(ctx, cacheKey, resp, time.Duration(h.cfg.CacheTTLSeconds)*time.Second)

	return c.JSON(resp)
}

// CombusStops handles GET /combus/stops.
func (h *Handlers) CombusStops(c *fiber.Ctx) error {
	return c.JSON(h.acc.CombusStops())
}

// CombusStopSequences handles GET /combus/stop-sequences.
func (h *Handlers) CombusStopSequences(c *fiber.Ctx) error {
	return c.JSON(h.acc.BestCombusStopSequences())
}

// AreaSpots handles GET /area/spots.
func (h *Handlers) AreaSpots(c *fiber.Ctx) error {
	return c.JSON(h.acc.Spots())
}
