package game

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
)

// agentSnapshot captures one agent's read-only state for the parallel
// sense/steer phase. Workers read only the snapshot and the pre-tick
// field, never live components.
type agentSnapshot struct {
	Pos     components.Position
	Heading float32
	Forager components.Forager
}

// intent is the output of the sense/steer phase: the heading the agent
// will move along this tick. Position changes, interactions, and deposits
// happen later, in the sequential apply phase.
type intent struct {
	NewHeading float32
}

// chooseHeading runs the per-tick decision for one agent against the
// previous tick's field state.
//
// Panicked agents ignore the field and the nest entirely: the new heading
// is drawn uniform in [0, 2pi). That independence from every environmental
// signal is what lets a panicking colony abandon a ritualistic loop.
func chooseHeading(snap *agentSnapshot, world *systems.World, p *simParams, rng *rand.Rand) intent {
	if snap.Forager.Mode == components.ModePanicked {
		return intent{NewHeading: rng.Float32() * 2 * math.Pi}
	}

	heading := snap.Heading
	x, y := snap.Pos.X, snap.Pos.Y

	// Sense the relevant channel at three candidate headings
	channel := systems.ChannelToFood
	if snap.Forager.Mode == components.ModeReturning {
		channel = systems.ChannelToHome
	}
	smellAhead := senseAt(world, x, y, heading, p.sensorDistance, channel)
	smellLeft := senseAt(world, x, y, heading-p.sensorAngle, p.sensorDistance, channel)
	smellRight := senseAt(world, x, y, heading+p.sensorAngle, p.sensorDistance, channel)

	wander := func() float32 {
		return (rng.Float32()*2 - 1) * p.wanderStrength
	}

	if snap.Forager.Mode == components.ModeSearching {
		switch {
		case smellAhead > smellLeft && smellAhead > smellRight:
			heading += wander()
		case smellLeft > smellRight:
			heading -= p.rotationSpeed
		case smellRight > smellLeft:
			heading += p.rotationSpeed
		default:
			heading += wander()
		}
		return intent{NewHeading: systems.NormalizeHeading(heading)}
	}

	// Returning: blend trail smell with nest gravity. Each candidate's
	// confidence is its pheromone reading plus a bonus for pointing
	// toward the nest; the gravity term is the global bias that keeps
	// purely local trails from trapping the colony in loops.
	angleToNest := world.AngleToNest(x, y)
	confidence := func(smell, candidate float32) float32 {
		diff := systems.NormalizeAngle(candidate - angleToNest)
		if diff < 0 {
			diff = -diff
		}
		return smell + (math.Pi-diff)*p.nestGravity*100
	}
	confAhead := confidence(smellAhead, heading)
	confLeft := confidence(smellLeft, heading-p.sensorAngle)
	confRight := confidence(smellRight, heading+p.sensorAngle)

	switch {
	case confAhead > confLeft && confAhead > confRight:
		heading += wander()
	case confLeft > confRight:
		heading -= p.rotationSpeed
	case confRight > confLeft:
		heading += p.rotationSpeed
	default:
		// No signal at all: turn toward the nest
		heading += systems.NormalizeAngle(angleToNest-heading) * p.rotationSpeed
	}
	return intent{NewHeading: systems.NormalizeHeading(heading)}
}

// senseAt samples a pheromone channel at distance d along a candidate heading.
func senseAt(world *systems.World, x, y, heading, d float32, ch systems.Channel) float32 {
	sx := x + d*float32(math.Cos(float64(heading)))
	sy := y + d*float32(math.Sin(float64(heading)))
	return world.Field.Sample(sx, sy, ch)
}
