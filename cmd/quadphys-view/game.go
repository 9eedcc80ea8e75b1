package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/plus3/quadphys/collision"
	"github.com/plus3/quadphys/config"
	"github.com/plus3/quadphys/ecs"
)

var (
	backgroundColor = color.RGBA{24, 24, 30, 255}
	gridColor       = color.RGBA{50, 50, 62, 255}
	contactColor    = color.RGBA{255, 80, 80, 255}
	triggerColor    = color.RGBA{255, 255, 255, 255}

	tagColors = map[string]color.RGBA{
		"Wall":   {120, 120, 130, 255},
		"Player": {179, 229, 252, 255},
		"Bullet": {255, 223, 120, 255},
		"Item":   {186, 255, 201, 255},
	}
	unknownTagColor = color.RGBA{217, 186, 255, 255}
)

type Game struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	watcher    *configWatcher

	world       *ecs.World
	stores      collision.Stores
	scheduler   *ecs.Scheduler
	rigidbodies *collision.RigidbodySystem
	collisions  *reloadableCollisions

	showGrid bool
	paused   bool
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.showGrid = !g.showGrid
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	g.pollConfig()

	if !g.paused {
		g.scheduler.Once(1.0 / 60.0)
	}
	return nil
}

func (g *Game) pollConfig() {
	if g.watcher == nil {
		return
	}

	select {
	case <-g.watcher.Events:
		g.reload()
	case err := <-g.watcher.Errors:
		g.logger.Warn("watching config", "err", err)
	default:
	}
}

// reload rebuilds the collision system from the config file. A broken file
// keeps the previous settings.
func (g *Game) reload() {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		g.logger.Warn("config reload rejected", "path", g.configPath, "err", err)
		return
	}

	g.cfg = cfg
	g.collisions.current = collision.NewCollisionSystem(g.stores, cfg.Matrix(), cfg.Options(g.logger))
	g.rigidbodies.SpeedCap = cfg.Physics.SpeedCap
	g.logger.Info("config reloaded", "path", g.configPath, "pairs", len(cfg.Matrix().Pairs()), "level", cfg.QuadTree.Level)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	level, bounds := g.collisions.current.Grid()
	ox := float32(margin - bounds.L)
	oy := float32(margin - bounds.B)

	if g.showGrid {
		cells := 1 << level
		w := float32(bounds.R-bounds.L) / float32(cells)
		h := float32(bounds.T-bounds.B) / float32(cells)
		for i := 0; i <= cells; i++ {
			x := ox + float32(bounds.L) + float32(i)*w
			y := oy + float32(bounds.B) + float32(i)*h
			vector.StrokeLine(screen, x, oy+float32(bounds.B), x, oy+float32(bounds.T), 1, gridColor, false)
			vector.StrokeLine(screen, ox+float32(bounds.L), y, ox+float32(bounds.R), y, 1, gridColor, false)
		}
	}

	for e, c := range g.stores.Colliders.Iter() {
		tr := g.stores.Transforms.Get(e)
		if tr == nil {
			continue
		}
		bb := c.Bounds(tr.Position)
		x, y := ox+float32(bb.L), oy+float32(bb.B)
		w, h := float32(bb.R-bb.L), float32(bb.T-bb.B)

		fill, ok := tagColors[c.Tag]
		if !ok {
			fill = unknownTagColor
		}
		vector.DrawFilledRect(screen, x, y, w, h, fill, false)

		result := g.stores.Results.Get(e)
		if result == nil {
			continue
		}
		if len(result.Collided) > 0 {
			vector.StrokeRect(screen, x, y, w, h, 1, triggerColor, false)
		}
		if result.Collision.X != 0 || result.Collision.Y != 0 {
			cx, cy := ox+float32(tr.Position.X), oy+float32(tr.Position.Y)
			vector.StrokeLine(screen, cx, cy, cx+float32(result.Collision.X)*4, cy+float32(result.Collision.Y)*4, 2, contactColor, true)
		}
		if c.Tag == "Player" {
			cx, cy := ox+float32(tr.Position.X), oy+float32(tr.Position.Y)
			r := float32(c.Width)
			vector.StrokeLine(screen, cx, cy, cx+r*float32(math.Cos(tr.Rotation)), cy+r*float32(math.Sin(tr.Rotation)), 1, triggerColor, true)
		}
	}

	var stats collision.FrameStats
	if published := ecs.ReadSingleton[collision.FrameStats](g.world); published != nil {
		stats = *published
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"TPS %.0f  entities %d  tick %d\ncolliders %d  candidates %d  overlaps %d  triggers %d  contacts %d  batches %d\narrows: move  G: grid  space: pause",
		ebiten.ActualTPS(), g.world.Len(), stats.Tick,
		stats.Colliders, stats.Candidates, stats.Overlaps, stats.Triggers, stats.Contacts, stats.Batches,
	))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.cfg.Bounds()
	return int(b.R-b.L) + 2*margin, int(b.T-b.B) + 2*margin
}
