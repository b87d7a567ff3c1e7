package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/colony/config"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.Cfg()
	w := NewWorld(cfg)
	if w == nil {
		t.Fatal("expected non-nil world")
	}
	return w
}

func TestWorldCreation(t *testing.T) {
	cfg := config.Cfg()
	w := newTestWorld(t)

	if w.Width != cfg.Derived.WorldW32 || w.Height != cfg.Derived.WorldH32 {
		t.Errorf("expected world %fx%f, got %fx%f",
			cfg.Derived.WorldW32, cfg.Derived.WorldH32, w.Width, w.Height)
	}
	if len(w.Foods()) != len(cfg.Food.Initial) {
		t.Errorf("expected %d seeded food sources, got %d", len(cfg.Food.Initial), len(w.Foods()))
	}
	if w.Field == nil {
		t.Fatal("expected world to own a pheromone field")
	}
}

func TestAddFoodMergesWithinRadius(t *testing.T) {
	w := newTestWorld(t)
	n := len(w.Foods())

	w.AddFood(500, 500, 100)
	if len(w.Foods()) != n+1 {
		t.Fatalf("expected new food source, have %d", len(w.Foods()))
	}

	// Within merge radius: tops up instead of appending
	w.AddFood(505, 505, 50)
	if len(w.Foods()) != n+1 {
		t.Errorf("expected merge, got %d sources", len(w.Foods()))
	}
	if got := w.Foods()[n].Amount; got != 150 {
		t.Errorf("expected merged amount 150, got %f", got)
	}

	// Outside merge radius: separate source
	w.AddFood(600, 600, 25)
	if len(w.Foods()) != n+2 {
		t.Errorf("expected separate source, got %d", len(w.Foods()))
	}
}

func TestAddFoodClampsOutOfBounds(t *testing.T) {
	w := newTestWorld(t)

	w.AddFood(-100, w.Height+100, 10)

	foods := w.Foods()
	f := foods[len(foods)-1]
	if f.X != 0 || f.Y != w.Height {
		t.Errorf("expected clamped position (0, %f), got (%f, %f)", w.Height, f.X, f.Y)
	}

	// Non-positive amounts are dropped
	n := len(w.Foods())
	w.AddFood(300, 300, 0)
	w.AddFood(300, 300, -5)
	if len(w.Foods()) != n {
		t.Errorf("expected non-positive amounts dropped, got %d sources", len(w.Foods()))
	}
}

func TestFoodNearAndPickup(t *testing.T) {
	w := newTestWorld(t)
	w.AddFood(400, 400, 3)

	if _, ok := w.FoodNear(400+50, 400, 10); ok {
		t.Error("found food outside radius")
	}

	idx, ok := w.FoodNear(402, 401, 10)
	if !ok {
		t.Fatal("expected food within radius")
	}

	if took := w.Pickup(idx, 1); took != 1 {
		t.Errorf("expected pickup of 1, got %f", took)
	}
	// Taking more than remains yields the remainder
	if took := w.Pickup(idx, 10); took != 2 {
		t.Errorf("expected remainder 2, got %f", took)
	}

	// Depleted source is invisible to FoodNear and dropped by compaction
	if _, ok := w.FoodNear(402, 401, 10); ok {
		t.Error("found depleted food source")
	}
	n := len(w.Foods())
	w.CompactFood()
	if len(w.Foods()) != n-1 {
		t.Errorf("expected compaction to drop depleted source, have %d of %d", len(w.Foods()), n)
	}
}

func TestVectorToNest(t *testing.T) {
	w := newTestWorld(t)

	dx, dy := w.VectorToNest(w.NestX-100, w.NestY)
	if math.Abs(float64(dx-1)) > 1e-5 || math.Abs(float64(dy)) > 1e-5 {
		t.Errorf("expected unit vector (1, 0), got (%f, %f)", dx, dy)
	}

	dx, dy = w.VectorToNest(w.NestX+30, w.NestY+40)
	norm := math.Sqrt(float64(dx*dx + dy*dy))
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("expected normalized vector, norm %f", norm)
	}

	// At the nest there is no direction
	dx, dy = w.VectorToNest(w.NestX, w.NestY)
	if dx != 0 || dy != 0 {
		t.Errorf("expected zero vector at nest, got (%f, %f)", dx, dy)
	}

	if !w.AtNest(w.NestX+1, w.NestY-1, 5) {
		t.Error("expected position near nest to be AtNest")
	}
	if w.AtNest(w.NestX+100, w.NestY, 5) {
		t.Error("expected far position not AtNest")
	}
}

func TestReflectEdgePolicy(t *testing.T) {
	w := newTestWorld(t)
	rng := rand.New(rand.NewSource(1))

	// Interior positions pass through untouched
	x, y, h := w.Reflect(w.Width/2, w.Height/2, 1.0, rng)
	if x != w.Width/2 || y != w.Height/2 || h != 1.0 {
		t.Errorf("interior position changed: (%f, %f, %f)", x, y, h)
	}

	// Beyond the margin: clamped back and turned around
	x, y, h = w.Reflect(-10, w.Height/2, 0, rng)
	if x != w.EdgeMargin {
		t.Errorf("expected clamp to margin %f, got %f", w.EdgeMargin, x)
	}
	// Heading flipped by pi, plus up to 0.5 rad scatter
	diff := math.Abs(float64(NormalizeAngle(h - math.Pi)))
	if diff > 0.5 {
		t.Errorf("expected reflected heading near pi, got %f", h)
	}

	x, y, _ = w.Reflect(w.Width+5, w.Height+5, 0, rng)
	if x != w.Width-w.EdgeMargin || y != w.Height-w.EdgeMargin {
		t.Errorf("expected clamp to far margin, got (%f, %f)", x, y)
	}
}
