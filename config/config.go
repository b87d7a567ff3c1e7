// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid marks configuration the simulation must not start with.
// All emergent behavior depends on the physical constants being well-formed,
// so validation failures are fatal at startup.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Field     FieldConfig     `yaml:"field"`
	Agents    AgentsConfig    `yaml:"agents"`
	Food      FoodConfig      `yaml:"food"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds world dimensions and nest placement.
// Coordinates are continuous world units; the pheromone grid is derived
// from these via field.cell_size.
type WorldConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	EdgeMargin float64 `yaml:"edge_margin"` // Inset agents reflect off
	NestX      float64 `yaml:"nest_x"`      // Negative = world center
	NestY      float64 `yaml:"nest_y"`
}

// FieldConfig holds pheromone field parameters.
type FieldConfig struct {
	CellSize            float64 `yaml:"cell_size"`             // World units per grid cell
	EvaporationRate     float64 `yaml:"evaporation_rate"`      // Multiplicative decay per step, [0,1)
	DiffusionRate       float64 `yaml:"diffusion_rate"`        // Neighbor blend weight, [0,1]
	DiffusionInterval   int     `yaml:"diffusion_interval"`    // Diffuse every N steps (1 = every step)
	MaxPheromone        float64 `yaml:"max_pheromone"`         // Per-cell concentration cap
	DepositAmount       float64 `yaml:"deposit_amount"`        // Base deposit per agent per tick
	SearchDepositFactor float64 `yaml:"search_deposit_factor"` // Breadcrumb scale for searching agents
}

// AgentsConfig holds the per-agent movement and state machine knobs.
type AgentsConfig struct {
	Count               int     `yaml:"count"`
	Speed               float64 `yaml:"speed"`           // Step length per tick
	RotationSpeed       float64 `yaml:"rotation_speed"`  // Radians per steering correction
	SensorAngle         float64 `yaml:"sensor_angle"`    // Sensing cone half-angle, radians
	SensorDistance      float64 `yaml:"sensor_distance"` // How far ahead sensors sample
	WanderStrength      float64 `yaml:"wander_strength"` // Exploration jitter amplitude
	NestGravityStrength float64 `yaml:"nest_gravity_strength"`
	MaxPatience         int     `yaml:"max_patience"`   // Unproductive steps before panic
	PanicDuration       int     `yaml:"panic_duration"` // Ticks spent panicking
	PickupRadius        float64 `yaml:"pickup_radius"`
	DeliveryRadius      float64 `yaml:"delivery_radius"`
}

// FoodConfig holds food source parameters and initial seeding.
type FoodConfig struct {
	MergeRadius float64    `yaml:"merge_radius"` // New food within this range tops up an existing source
	Initial     []FoodSeed `yaml:"initial"`
}

// FoodSeed places a food source at startup.
type FoodSeed struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Amount float64 `yaml:"amount"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks    int `yaml:"stats_window_ticks"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	LogInterval         int `yaml:"log_interval"` // Ticks between world-state log lines (0 disables)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Cols, Rows       int // Pheromone grid dimensions
	WorldW32         float32
	WorldH32         float32
	NestX32, NestY32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	fail := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fail("world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.World.EdgeMargin < 0 || c.World.EdgeMargin*2 >= math.Min(c.World.Width, c.World.Height) {
		return fail("edge_margin %g leaves no interior in a %gx%g world", c.World.EdgeMargin, c.World.Width, c.World.Height)
	}
	if c.Field.CellSize <= 0 {
		return fail("field cell_size must be positive, got %g", c.Field.CellSize)
	}
	if c.Field.EvaporationRate < 0 || c.Field.EvaporationRate >= 1 {
		return fail("evaporation_rate must be in [0,1), got %g", c.Field.EvaporationRate)
	}
	if c.Field.DiffusionRate < 0 || c.Field.DiffusionRate > 1 {
		return fail("diffusion_rate must be in [0,1], got %g", c.Field.DiffusionRate)
	}
	if c.Field.DiffusionInterval < 1 {
		return fail("diffusion_interval must be >= 1, got %d", c.Field.DiffusionInterval)
	}
	if c.Field.MaxPheromone <= 0 {
		return fail("max_pheromone must be positive, got %g", c.Field.MaxPheromone)
	}
	if c.Field.DepositAmount < 0 || c.Field.SearchDepositFactor < 0 {
		return fail("deposit amounts must be non-negative")
	}
	if c.Agents.Count <= 0 {
		return fail("agent count must be positive, got %d", c.Agents.Count)
	}
	if c.Agents.Speed <= 0 {
		return fail("agent speed must be positive, got %g", c.Agents.Speed)
	}
	if c.Agents.SensorDistance <= 0 {
		return fail("sensor_distance must be positive, got %g", c.Agents.SensorDistance)
	}
	if c.Agents.MaxPatience <= 0 {
		return fail("max_patience must be positive, got %d", c.Agents.MaxPatience)
	}
	if c.Agents.PanicDuration <= 0 {
		return fail("panic_duration must be positive, got %d", c.Agents.PanicDuration)
	}
	if c.Agents.PickupRadius <= 0 || c.Agents.DeliveryRadius <= 0 {
		return fail("pickup and delivery radii must be positive")
	}
	if c.Food.MergeRadius < 0 {
		return fail("food merge_radius must be non-negative, got %g", c.Food.MergeRadius)
	}
	for i, seed := range c.Food.Initial {
		if seed.Amount <= 0 {
			return fail("initial food %d has non-positive amount %g", i, seed.Amount)
		}
	}
	if c.Telemetry.StatsWindowTicks < 1 {
		return fail("stats_window_ticks must be >= 1, got %d", c.Telemetry.StatsWindowTicks)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Cols = int(math.Ceil(c.World.Width / c.Field.CellSize))
	c.Derived.Rows = int(math.Ceil(c.World.Height / c.Field.CellSize))
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)

	// Nest defaults to the world center
	nestX := c.World.NestX
	if nestX < 0 {
		nestX = c.World.Width / 2
	}
	nestY := c.World.NestY
	if nestY < 0 {
		nestY = c.World.Height / 2
	}
	c.Derived.NestX32 = float32(nestX)
	c.Derived.NestY32 = float32(nestY)
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
