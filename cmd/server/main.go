package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/coins-dawn/prometheus/internal/api"
	"github.com/coins-dawn/prometheus/internal/apperr"
	"github.com/coins-dawn/prometheus/internal/cache"
	"github.com/coins-dawn/prometheus/internal/config"
	"github.com/coins-dawn/prometheus/internal/dataaccess"
	"github.com/coins-dawn/prometheus/internal/orchestrator"
	"github.com/coins-dawn/prometheus/internal/ptrans"
	"github.com/coins-dawn/prometheus/internal/roadnet"
)

func main() {
	log.Println("Starting prometheus combus-planning server...")

	cfg := config.LoadConfigFromEnv()

	acc, err := dataaccess.GetAccessor(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to load data accessor: %v", err)
	}
	log.Println("✓ Data accessor loaded")

	roadGraph, err := roadnet.LoadGraph(
		filepath.Join(cfg.DataDir, "road_nodes.csv"),
		filepath.Join(cfg.DataDir, "road_edges.csv"),
	)
	if err != nil {
		log.Fatalf("Failed to load road graph: %v", err)
	}
	log.Println("✓ Road network graph loaded")

	transitGraph, err := ptrans.LoadGraph(
		filepath.Join(cfg.DataDir, "transit_stops.csv"),
		filepath.Join(cfg.DataDir, "transit_edges.csv"),
		cfg.WalkSpeedMPerMin,
		cfg.MaxWalkMinutes,
	)
	if err != nil {
		log.Fatalf("Failed to load transit graph: %v", err)
	}
	transitEngine := ptrans.NewEngine(transitGraph)
	log.Println("✓ Public-transit graph loaded")

	// Initialize Redis connection (isochrone/route-artefact cache-aside layer).
	if _, err := cache.GetClient(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("✓ Redis connection established")

	orch := orchestrator.New(acc, roadGraph, transitEngine, cfg)
	handlers := api.New(orch, acc, cfg)

	app := fiber.New(fiber.Config{
		AppName:      "prometheus",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/", handlers.Health)
	app.Post("/search/car", handlers.SearchCar)
	app.Post("/search/ptrans", handlers.SearchPtrans)
	app.Post("/area/search", handlers.AreaSearch)
	app.Get("/combus/stops", handlers.CombusStops)
	app.Get("/combus/stop-sequences", handlers.CombusStopSequences)
	app.Get("/area/spots", handlers.AreaSpots)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{"error": "endpoint not found"})
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server listening on http://localhost%s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// customErrorHandler maps the internal/apperr taxonomy to the fiber-shaped
// JSON error response (spec.md §7: 4xx for MALFORMED_INPUT, 5xx otherwise).
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if ae, ok := err.(*apperr.Error); ok {
		code = apperr.HTTPStatus(ae.Kind())
	} else if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}

	log.Printf("request error: %v", err)

	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
