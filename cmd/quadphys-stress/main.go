package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/config"
	"github.com/plus3/quadphys/ecs"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config overlaid on the defaults.")
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	entityCount := flag.Int("entities", 2000, "The number of moving entities to keep alive.")
	obstacles := flag.Int("walls", 24, "The number of static walls scattered inside the playfield.")
	seed := flag.Uint64("seed", 1, "Seed for entity placement and movement.")
	csvPath := flag.String("csv", "", "Write per-frame collision stats to this CSV file.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	verbose := flag.Bool("v", false, "Log every collision pass.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	logger.Info("starting collision stress test", "entities", *entityCount, "walls", *obstacles, "level", cfg.QuadTree.Level)

	// 1. Setup world, scheduler and systems
	world := ecs.NewWorld()
	scheduler := ecs.NewScheduler(world)
	stores := collision.RegisterStores(world)
	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	scheduler.Register(&wanderSystem{stores: stores, rng: rng})
	_, collisions := collision.Install(scheduler, cfg.Matrix(), cfg.Options(logger))
	playfield := &arena{stores: stores, bounds: cfg.Bounds(), rng: rng}
	lifecycle := &lifecycleSystem{arena: playfield}
	scheduler.Register(lifecycle)

	// 2. Populate the playfield
	playfield.spawnWalls(world, *obstacles)
	playfield.populate(world, *entityCount)
	logger.Info("population complete", "alive", world.Len())

	// 3. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Entities:       *entityCount,
		Walls:          *obstacles,
		Level:          cfg.QuadTree.Level,
		Workers:        collisionWorkers(cfg),
		GCPauseMetrics: *gcPauseMetrics,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	var frames []frameRecord

	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running simulation", "duration", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	lastFrameTime := time.Now()

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			deltaTime := time.Since(lastFrameTime)
			lastFrameTime = time.Now()

			updateStart := time.Now()
			scheduler.Once(float64(deltaTime) / float64(time.Second))
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			report.Collisions.Add(collisions.Stats())
			if *csvPath != "" {
				frames = append(frames, frameRecord{
					FrameStats:   collisions.Stats(),
					UpdateMicros: updateDuration.Microseconds(),
				})
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = int64(len(report.UpdateTime.Samples))
	report.UpdateTime.Finalize()
	report.BulletsSpent = lifecycle.BulletsSpent
	report.ItemsTaken = lifecycle.ItemsTaken
	report.Systems = scheduler.GetStats().Systems
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("simulation finished", "frames", report.TotalUpdates)

	if *csvPath != "" {
		if err := writeFrames(*csvPath, frames); err != nil {
			logger.Error("writing frame stats", "path", *csvPath, "err", err)
			os.Exit(1)
		}
		logger.Info("frame stats written", "path", *csvPath, "rows", len(frames))
	}

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Error("generating report", "err", err)
		os.Exit(1)
	}
	fmt.Println("--- End of Report ---")
}

func collisionWorkers(cfg *config.Config) int {
	if cfg.Parallel.Workers > 0 {
		return cfg.Parallel.Workers
	}
	return runtime.GOMAXPROCS(0)
}
