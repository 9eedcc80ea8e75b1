// Package config loads the collision engine settings from YAML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"

	"github.com/plus3/quadphys/collision"
)

//go:embed defaults.yaml
var defaultsYAML []byte

const (
	MinQuadTreeLevel = 1
	MaxQuadTreeLevel = 10
)

var ErrInvalid = errors.New("config: invalid value")

// Config holds every tunable of the collision engine.
type Config struct {
	Playfield PlayfieldConfig `yaml:"playfield"`
	QuadTree  QuadTreeConfig  `yaml:"quadtree"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Parallel  ParallelConfig  `yaml:"parallel"`
	Tags      TagsConfig      `yaml:"tags"`
}

// PlayfieldConfig is the region covered by the broad phase.
type PlayfieldConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type QuadTreeConfig struct {
	Level int `yaml:"level"`
}

type PhysicsConfig struct {
	SpeedCap float64 `yaml:"speed_cap"`
}

type ParallelConfig struct {
	Threshold int `yaml:"threshold"`
	Workers   int `yaml:"workers"` // 0 = GOMAXPROCS
}

// TagPair names two collider tags. Order does not matter.
type TagPair struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// TagsConfig lists which tag pairs are pushed apart and which only record each other.
// A list given in a user file replaces the default list entirely.
type TagsConfig struct {
	Collide []TagPair `yaml:"collide"`
	Trigger []TagPair `yaml:"trigger"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are broken: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse overlays data onto the embedded defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(data) > 0 {
		// only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !(c.Playfield.Width > 0) || !(c.Playfield.Height > 0) {
		invalid("playfield must have a positive size, got %gx%g", c.Playfield.Width, c.Playfield.Height)
	}
	if c.QuadTree.Level < MinQuadTreeLevel || c.QuadTree.Level > MaxQuadTreeLevel {
		invalid("quadtree.level %d outside [%d, %d]", c.QuadTree.Level, MinQuadTreeLevel, MaxQuadTreeLevel)
	}
	if !(c.Physics.SpeedCap > 0) {
		invalid("physics.speed_cap must be positive, got %g", c.Physics.SpeedCap)
	}
	if c.Parallel.Threshold < 0 {
		invalid("parallel.threshold must not be negative, got %d", c.Parallel.Threshold)
	}
	if c.Parallel.Workers < 0 {
		invalid("parallel.workers must not be negative, got %d", c.Parallel.Workers)
	}
	for i, p := range c.Tags.Collide {
		if p.A == "" || p.B == "" {
			invalid("tags.collide[%d] has an empty tag", i)
		}
	}
	for i, p := range c.Tags.Trigger {
		if p.A == "" || p.B == "" {
			invalid("tags.trigger[%d] has an empty tag", i)
		}
	}

	return errors.Join(errs...)
}

// Matrix builds the tag matrix described by the tags section.
func (c *Config) Matrix() *collision.TagMatrix {
	m := collision.NewTagMatrix()
	for _, p := range c.Tags.Collide {
		m.Collide(p.A, p.B)
	}
	for _, p := range c.Tags.Trigger {
		m.Trigger(p.A, p.B)
	}
	return m
}

// Bounds returns the playfield as a bounding box.
func (c *Config) Bounds() cp.BB {
	p := c.Playfield
	return cp.BB{L: p.X, B: p.Y, R: p.X + p.Width, T: p.Y + p.Height}
}

// Options converts the configuration into collision system options.
func (c *Config) Options(logger *slog.Logger) collision.Options {
	return collision.Options{
		Level:             c.QuadTree.Level,
		Bounds:            c.Bounds(),
		ParallelThreshold: c.Parallel.Threshold,
		Workers:           c.Parallel.Workers,
		SpeedCap:          c.Physics.SpeedCap,
		Logger:            logger,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
