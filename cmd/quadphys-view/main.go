// Command quadphys-view renders a live collision scene for debugging tag
// matrices and quadtree settings. Arrow keys steer the player, G toggles the
// quadtree grid. When started with -config, saving the file reloads the tag
// matrix and quadtree settings without restarting.
package main

import (
	"flag"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/config"
	"github.com/plus3/quadphys/ecs"
)

const margin = 24

func main() {
	configPath := flag.String("config", "", "Path to a YAML config overlaid on the defaults. Watched for changes.")
	entityCount := flag.Int("entities", 200, "The number of moving entities.")
	seed := flag.Uint64("seed", 1, "Seed for entity placement.")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("loading config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	world := ecs.NewWorld()
	stores := collision.RegisterStores(world)
	scheduler := ecs.NewScheduler(world)

	playfield := &scene{
		stores: stores,
		bounds: cfg.Bounds(),
		rng:    rand.New(rand.NewPCG(*seed, *seed+1)),
	}

	rigidbodies := collision.NewRigidbodySystem(stores, cfg.Physics.SpeedCap, logger)
	collisions := &reloadableCollisions{current: collision.NewCollisionSystem(stores, cfg.Matrix(), cfg.Options(logger))}
	control := &controlSystem{stores: stores}

	scheduler.Register(control)
	scheduler.Register(rigidbodies)
	scheduler.Register(collisions)
	scheduler.Register(&respawnSystem{scene: playfield})

	control.player = playfield.populate(world, *entityCount)

	game := &Game{
		cfg:         cfg,
		configPath:  *configPath,
		logger:      logger,
		world:       world,
		stores:      stores,
		scheduler:   scheduler,
		rigidbodies: rigidbodies,
		collisions:  collisions,
		showGrid:    true,
	}

	if *configPath != "" {
		watcher, err := watchConfig(*configPath)
		if err != nil {
			logger.Warn("config hot reload disabled", "path", *configPath, "err", err)
		} else {
			game.watcher = watcher
			defer watcher.Close()
		}
	}

	b := cfg.Bounds()
	ebiten.SetWindowSize(int(b.R-b.L)+2*margin, int(b.T-b.B)+2*margin)
	ebiten.SetWindowTitle("quadphys")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("running viewer", "err", err)
		os.Exit(1)
	}
}
