package game

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/systems"
)

// initTestConfig installs an inline YAML config as the global config.
func initTestConfig(t *testing.T, yaml string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	config.MustInit(path)
}

// quietConfig is a single deterministic agent in an empty world: no food,
// no wander jitter, so every searching step is straight and unproductive.
const quietConfig = `
world:
  width: 400
  height: 400
  edge_margin: 10
  nest_x: 200
  nest_y: 200
field:
  cell_size: 4
  evaporation_rate: 0.01
  diffusion_rate: 0.2
  diffusion_interval: 1
  max_pheromone: 1000
  deposit_amount: 100
  search_deposit_factor: 0.5
agents:
  count: 1
  speed: 1.0
  rotation_speed: 0.2
  sensor_angle: 0.785
  sensor_distance: 8
  wander_strength: 0.0
  nest_gravity_strength: 0.1
  max_patience: 5
  panic_duration: 3
  pickup_radius: 5
  delivery_radius: 5
food:
  merge_radius: 8
  initial: []
telemetry:
  stats_window_ticks: 100000
  log_interval: 0
`

func (g *Game) forager(i int) *components.Forager {
	return g.foragerMap.Get(g.entities[i])
}

func TestPatienceTriggersPanicExactlyAtThreshold(t *testing.T) {
	initTestConfig(t, quietConfig)
	g := NewGame(7)
	defer g.Unload()

	maxPatience := int32(config.Cfg().Agents.MaxPatience)

	// Every step is unproductive; panic must start on the MAX_PATIENCE-th
	// step, not before.
	for i := int32(1); i < maxPatience; i++ {
		g.Step()
		f := g.forager(0)
		if f.Mode != components.ModeSearching {
			t.Fatalf("panicked after %d unproductive steps, want %d", i, maxPatience)
		}
		if f.Patience != maxPatience-i {
			t.Fatalf("patience %d after %d steps, want %d", f.Patience, i, maxPatience-i)
		}
	}

	g.Step()
	f := g.forager(0)
	if f.Mode != components.ModePanicked {
		t.Fatalf("expected panic after %d unproductive steps", maxPatience)
	}
	if f.PanicTimer != int32(config.Cfg().Agents.PanicDuration) {
		t.Errorf("panic timer %d, want %d", f.PanicTimer, config.Cfg().Agents.PanicDuration)
	}
}

func TestPanicRecoveryRestoresModeAndPatience(t *testing.T) {
	initTestConfig(t, quietConfig)
	g := NewGame(7)
	defer g.Unload()

	f := g.forager(0)
	f.Mode = components.ModeReturning
	f.Patience = 1
	f.EnterPanic(2)

	g.Step()
	if f.Mode != components.ModePanicked {
		t.Fatal("expected agent still panicked after one tick")
	}

	g.Step()
	if f.Mode != components.ModeReturning {
		t.Errorf("expected panic to resume returning mode, got %v", f.Mode)
	}
	if f.Patience != int32(config.Cfg().Agents.MaxPatience) {
		t.Errorf("expected fresh patience after panic, got %d", f.Patience)
	}
	if f.PanicTimer != 0 {
		t.Errorf("expected zero panic timer, got %d", f.PanicTimer)
	}
}

func TestPanickedAgentsDepositNothing(t *testing.T) {
	initTestConfig(t, quietConfig)
	g := NewGame(7)
	defer g.Unload()

	g.forager(0).EnterPanic(10000)

	for i := 0; i < 100; i++ {
		g.Step()
	}

	field := g.world.Field
	if total := field.Total(systems.ChannelToFood); total != 0 {
		t.Errorf("panicked agent polluted to_food channel: %f", total)
	}
	if total := field.Total(systems.ChannelToHome); total != 0 {
		t.Errorf("panicked agent polluted to_home channel: %f", total)
	}
}

func TestPickupResetsPatienceAndTransitions(t *testing.T) {
	initTestConfig(t, quietConfig)
	g := NewGame(7)
	defer g.Unload()

	// Food within pickup radius of the nest-spawned agent. The agent
	// starts on the goal boundary, so it still runs one full tick and
	// transitions at the end of it — never before the first Step.
	g.world.AddFood(203, 200, 10)
	f := g.forager(0)
	f.Patience = 2

	if f.Mode != components.ModeSearching {
		t.Fatal("expected agent to start searching")
	}

	g.Step()

	if f.Mode != components.ModeReturning {
		t.Fatalf("expected pickup transition, mode %v", f.Mode)
	}
	if f.Patience != int32(config.Cfg().Agents.MaxPatience) {
		t.Errorf("expected patience reset on pickup, got %d", f.Patience)
	}
	if !f.Carrying() {
		t.Error("expected agent to carry food after pickup")
	}
	if got := g.world.Foods()[0].Amount; got != 9 {
		t.Errorf("expected food depleted to 9, got %f", got)
	}

	// Still within delivery radius of the nest: the next tick delivers.
	g.Step()
	if f.Mode != components.ModeSearching {
		t.Errorf("expected delivery transition, mode %v", f.Mode)
	}
	if g.Delivered() != 1 {
		t.Errorf("expected 1 delivery, got %d", g.Delivered())
	}
	if f.Patience != int32(config.Cfg().Agents.MaxPatience) {
		t.Errorf("expected patience reset on delivery, got %d", f.Patience)
	}
}

// determinismConfig uses enough agents to exercise the parallel worker
// pool and full noise/food dynamics.
const determinismConfig = `
world:
  width: 400
  height: 300
  edge_margin: 10
  nest_x: 200
  nest_y: 150
field:
  cell_size: 4
  evaporation_rate: 0.01
  diffusion_rate: 0.4
  diffusion_interval: 2
  max_pheromone: 1000
  deposit_amount: 300
  search_deposit_factor: 0.5
agents:
  count: 80
  speed: 1.5
  rotation_speed: 0.2
  sensor_angle: 0.785
  sensor_distance: 10
  wander_strength: 0.3
  nest_gravity_strength: 0.1
  max_patience: 60
  panic_duration: 15
  pickup_radius: 8
  delivery_radius: 10
food:
  merge_radius: 12
  initial:
    - { x: 60, y: 60, amount: 500 }
telemetry:
  stats_window_ticks: 100000
  log_interval: 0
`

func TestDeterminismAcrossRuns(t *testing.T) {
	initTestConfig(t, determinismConfig)

	run := func() FrameState {
		g := NewGame(1234)
		defer g.Unload()
		for i := 0; i < 300; i++ {
			if i == 50 {
				g.PlaceFood(320, 240, 400)
			}
			g.Step()
		}
		return g.Export()
	}

	first := run()
	second := run()

	if !reflect.DeepEqual(first, second) {
		t.Fatal("two runs with the same seed and event sequence diverged")
	}
}

func TestPlaceFoodAppearsAtTickBoundary(t *testing.T) {
	initTestConfig(t, quietConfig)
	g := NewGame(7)
	defer g.Unload()

	g.PlaceFood(100, 100, 50)
	if len(g.world.Foods()) != 0 {
		t.Error("food appeared before the tick drained the queue")
	}

	// Malformed events are dropped at drain time
	g.PlaceFood(100, 100, -5)

	g.Step()
	foods := g.world.Foods()
	if len(foods) != 1 {
		t.Fatalf("expected exactly 1 food source after drain, got %d", len(foods))
	}
	if foods[0].Amount != 50 {
		t.Errorf("expected amount 50, got %f", foods[0].Amount)
	}
}
