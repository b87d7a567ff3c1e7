package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/colony/config"
)

// FoodSource is a depletable pile of food in the world.
type FoodSource struct {
	X, Y   float32
	Amount float32
}

// World owns the pheromone field, the food sources, and the nest.
// It is a coordinating accessor layer: the agent state machine lives in
// the game package, food list mutation happens only during the sequential
// phase of a tick.
type World struct {
	Width, Height float32
	EdgeMargin    float32
	NestX, NestY  float32

	Field *PheromoneField

	foods       []FoodSource
	mergeRadius float32
}

// NewWorld creates the world, its pheromone field, and the initial food
// sources from config.
func NewWorld(cfg *config.Config) *World {
	w := &World{
		Width:       cfg.Derived.WorldW32,
		Height:      cfg.Derived.WorldH32,
		EdgeMargin:  float32(cfg.World.EdgeMargin),
		NestX:       cfg.Derived.NestX32,
		NestY:       cfg.Derived.NestY32,
		Field:       NewPheromoneField(cfg),
		mergeRadius: float32(cfg.Food.MergeRadius),
		foods:       make([]FoodSource, 0, len(cfg.Food.Initial)+8),
	}
	for _, seed := range cfg.Food.Initial {
		w.AddFood(float32(seed.X), float32(seed.Y), float32(seed.Amount))
	}
	return w
}

// AddFood places food at a world position. Positions outside the world are
// clamped to the nearest in-bounds point (never rejected). Food landing
// within the merge radius of an existing source tops that source up
// instead of creating a new one.
func (w *World) AddFood(x, y, amount float32) {
	if amount <= 0 {
		return
	}
	x = clampFloat(x, 0, w.Width)
	y = clampFloat(y, 0, w.Height)

	if w.mergeRadius > 0 {
		mergeSq := w.mergeRadius * w.mergeRadius
		for i := range w.foods {
			if DistanceSq(x, y, w.foods[i].X, w.foods[i].Y) <= mergeSq {
				w.foods[i].Amount += amount
				return
			}
		}
	}
	w.foods = append(w.foods, FoodSource{X: x, Y: y, Amount: amount})
}

// FoodNear returns the index of the nearest non-empty food source within
// radius, or false if none is in range.
func (w *World) FoodNear(x, y, radius float32) (int, bool) {
	best := -1
	bestSq := radius * radius
	for i := range w.foods {
		if w.foods[i].Amount <= 0 {
			continue
		}
		dSq := DistanceSq(x, y, w.foods[i].X, w.foods[i].Y)
		if dSq <= bestSq {
			best = i
			bestSq = dSq
		}
	}
	return best, best >= 0
}

// Pickup removes up to amount from the food source at index i and returns
// how much was actually taken. Empty sources stay in the list until
// CompactFood runs at the end of the tick.
func (w *World) Pickup(i int, amount float32) float32 {
	if i < 0 || i >= len(w.foods) || amount <= 0 {
		return 0
	}
	take := amount
	if take > w.foods[i].Amount {
		take = w.foods[i].Amount
	}
	w.foods[i].Amount -= take
	return take
}

// CompactFood drops depleted sources. Called once per tick, after all
// agents have interacted, so indices stay stable within a tick.
func (w *World) CompactFood() {
	kept := w.foods[:0]
	for _, f := range w.foods {
		if f.Amount > 0 {
			kept = append(kept, f)
		}
	}
	w.foods = kept
}

// Foods returns the live food source list. Read-only for callers; export
// paths must copy.
func (w *World) Foods() []FoodSource {
	return w.foods
}

// TotalFood returns the summed remaining amount across all sources.
func (w *World) TotalFood() float64 {
	var total float64
	for _, f := range w.foods {
		total += float64(f.Amount)
	}
	return total
}

// VectorToNest returns the normalized direction from a position toward
// the nest. At the nest itself it returns a zero vector.
func (w *World) VectorToNest(x, y float32) (float32, float32) {
	dx := w.NestX - x
	dy := w.NestY - y
	d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if d == 0 {
		return 0, 0
	}
	return dx / d, dy / d
}

// AngleToNest returns the world-frame angle from a position to the nest.
func (w *World) AngleToNest(x, y float32) float32 {
	return float32(math.Atan2(float64(w.NestY-y), float64(w.NestX-x)))
}

// AtNest reports whether a position is within radius of the nest.
func (w *World) AtNest(x, y, radius float32) bool {
	return DistanceSq(x, y, w.NestX, w.NestY) <= radius*radius
}

// Reflect applies the edge policy: agents that leave the inset interior
// are clamped back to it and turned around with a small random scatter.
// This is the fixed boundary behavior (reflect, not wrap): trails never
// continue across edges, matching the non-toroidal pheromone grid.
func (w *World) Reflect(x, y, heading float32, rng *rand.Rand) (float32, float32, float32) {
	m := w.EdgeMargin
	if x > m && x < w.Width-m && y > m && y < w.Height-m {
		return x, y, heading
	}
	x = clampFloat(x, m, w.Width-m)
	y = clampFloat(y, m, w.Height-m)
	heading += math.Pi + (rng.Float32()-0.5)
	return x, y, NormalizeHeading(heading)
}
