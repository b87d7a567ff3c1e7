// Package game wires the world, the pheromone field, and the agent
// collection into a deterministic tick loop.
package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// simParams holds the hot-path agent constants, converted once from config.
type simParams struct {
	speed               float32
	rotationSpeed       float32
	sensorAngle         float32
	sensorDistance      float32
	wanderStrength      float32
	nestGravity         float32
	pickupRadius        float32
	deliveryRadius      float32
	depositAmount       float32
	searchDepositFactor float32
	maxPatience         int32
	panicDuration       int32
}

func paramsFromConfig(cfg *config.Config) simParams {
	return simParams{
		speed:               float32(cfg.Agents.Speed),
		rotationSpeed:       float32(cfg.Agents.RotationSpeed),
		sensorAngle:         float32(cfg.Agents.SensorAngle),
		sensorDistance:      float32(cfg.Agents.SensorDistance),
		wanderStrength:      float32(cfg.Agents.WanderStrength),
		nestGravity:         float32(cfg.Agents.NestGravityStrength),
		pickupRadius:        float32(cfg.Agents.PickupRadius),
		deliveryRadius:      float32(cfg.Agents.DeliveryRadius),
		depositAmount:       float32(cfg.Field.DepositAmount),
		searchDepositFactor: float32(cfg.Field.SearchDepositFactor),
		maxPatience:         int32(cfg.Agents.MaxPatience),
		panicDuration:       int32(cfg.Agents.PanicDuration),
	}
}

// Options configures a new game instance.
type Options struct {
	Seed             int64
	LogStats         bool
	StatsWindowTicks int    // 0 = use config
	OutputDir        string // empty = CSV output disabled
}

// Game holds the complete simulation state.
type Game struct {
	ecsWorld *ecs.World
	world    *systems.World

	agentMapper *ecs.Map3[
		components.Position,
		components.Heading,
		components.Forager,
	]
	agentFilter *ecs.Filter3[
		components.Position,
		components.Heading,
		components.Forager,
	]

	// Individual component mappers for lookups
	posMap     *ecs.Map1[components.Position]
	headingMap *ecs.Map1[components.Heading]
	foragerMap *ecs.Map1[components.Forager]

	// Agents in fixed update order. The collection is created once and
	// never grows or shrinks; the apply phase iterates this slice, not
	// query order, so tick results are independent of ECS storage layout.
	entities []ecs.Entity

	// Per-agent RNG streams, seeded from the run seed and the agent index.
	// Each stream is only ever drawn from while computing that agent's
	// tick, so parallel scheduling cannot reorder draws.
	rngs []*rand.Rand

	events *eventQueue
	par    *parallelState

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	params   simParams
	logStats bool

	tick        int32
	delivered   int64 // food units delivered at the nest, cumulative
	logInterval int32
}

// NewGame creates a game from the global config with default options.
func NewGame(seed int64) *Game {
	return NewGameWithOptions(Options{Seed: seed})
}

// NewGameWithOptions creates a fully wired game instance.
// config.Init must have been called.
func NewGameWithOptions(opts Options) *Game {
	cfg := config.Cfg()
	world := ecs.NewWorld()

	g := &Game{
		ecsWorld: world,
		world:    systems.NewWorld(cfg),
		agentMapper: ecs.NewMap3[
			components.Position,
			components.Heading,
			components.Forager,
		](world),
		agentFilter: ecs.NewFilter3[
			components.Position,
			components.Heading,
			components.Forager,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		headingMap: ecs.NewMap1[components.Heading](world),
		foragerMap: ecs.NewMap1[components.Forager](world),
		events:      newEventQueue(),
		params:      paramsFromConfig(cfg),
		logStats:    opts.LogStats,
		logInterval: int32(cfg.Telemetry.LogInterval),
	}

	windowTicks := opts.StatsWindowTicks
	if windowTicks <= 0 {
		windowTicks = cfg.Telemetry.StatsWindowTicks
	}
	g.collector = telemetry.NewCollector(int32(windowTicks))
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			Logf("telemetry output disabled: %v", err)
		} else {
			g.output = om
			if err := om.WriteConfig(cfg); err != nil {
				Logf("failed to write config snapshot: %v", err)
			}
		}
	}

	g.spawnColony(cfg.Agents.Count, opts.Seed)
	g.par = newParallelState(len(g.entities))

	return g
}

// spawnColony creates the fixed agent population at the nest.
// Agents are never destroyed; the collection size is constant for the run.
func (g *Game) spawnColony(count int, seed int64) {
	g.entities = make([]ecs.Entity, 0, count)
	g.rngs = make([]*rand.Rand, 0, count)

	for i := 0; i < count; i++ {
		// Distinct deterministic stream per agent
		agentRNG := rand.New(rand.NewSource(seed + int64(i)*0x9E3779B9 + 1))

		pos := components.Position{X: g.world.NestX, Y: g.world.NestY}
		heading := components.Heading{Angle: agentRNG.Float32() * 2 * math.Pi}
		forager := components.Forager{
			Mode:     components.ModeSearching,
			Patience: g.params.maxPatience,
		}

		entity := g.agentMapper.NewEntity(&pos, &heading, &forager)
		g.entities = append(g.entities, entity)
		g.rngs = append(g.rngs, agentRNG)
	}
}

// PlaceFood enqueues a food placement event. Safe to call from any
// goroutine; the event is applied at the start of the next tick.
func (g *Game) PlaceFood(x, y, amount float32) {
	g.events.Push(foodEvent{X: x, Y: y, Amount: amount})
}

// Tick returns the current tick count.
func (g *Game) Tick() int32 {
	return g.tick
}

// Delivered returns the cumulative food units delivered at the nest.
func (g *Game) Delivered() int64 {
	return g.delivered
}

// World returns the simulation world. Callers outside the tick loop must
// treat it as read-only.
func (g *Game) World() *systems.World {
	return g.world
}

// Unload releases worker goroutines and flushes telemetry output.
func (g *Game) Unload() {
	g.par.stopWorkers()
	if g.output != nil {
		g.output.Close()
	}
}
