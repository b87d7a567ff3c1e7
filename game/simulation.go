package game

import (
	"math"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Step advances the simulation by exactly one tick, in fixed order:
//
//  1. Drain pending food events into the world.
//  2. Sense/steer every agent in parallel against the previous tick's
//     field snapshot (heading intents only).
//  3. Apply intents sequentially in agent-index order: move, reflect,
//     interact, buffer deposits.
//  4. Fold buffered deposits into the field, then run the field step
//     (diffuse, then evaporate).
//
// Given a fixed seed and event sequence, two runs produce identical
// agent and field state tick for tick.
func (g *Game) Step() {
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseEvents)
	g.drainEvents()

	g.perf.StartPhase(telemetry.PhaseBehavior)
	g.snapshotAgents()
	g.par.run(g)

	g.perf.StartPhase(telemetry.PhaseApply)
	g.applyIntents()

	g.perf.StartPhase(telemetry.PhaseField)
	g.world.Field.ApplyDeposits()
	g.world.Field.Step()
	g.world.CompactFood()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.flushTelemetry()

	g.perf.EndTick()
}

// drainEvents applies all pending external input. Out-of-bounds food is
// clamped into the world by AddFood; non-positive amounts are dropped.
func (g *Game) drainEvents() {
	for _, ev := range g.events.Drain() {
		if ev.Amount <= 0 {
			continue
		}
		g.world.AddFood(ev.X, ev.Y, ev.Amount)
		g.collector.RecordFoodPlaced(float64(ev.Amount))
	}
}

// snapshotAgents copies each agent's state into the parallel-phase buffer.
func (g *Game) snapshotAgents() {
	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		heading := g.headingMap.Get(e)
		forager := g.foragerMap.Get(e)
		g.par.snapshots[i] = agentSnapshot{
			Pos:     *pos,
			Heading: heading.Angle,
			Forager: *forager,
		}
	}
}

// applyIntents runs the sequential half of the agent tick: movement,
// boundary reflection, goal interactions, state transitions, and deposit
// buffering. Iteration order is the fixed agent index order.
func (g *Game) applyIntents() {
	p := &g.params

	for i, e := range g.entities {
		pos := g.posMap.Get(e)
		heading := g.headingMap.Get(e)
		forager := g.foragerMap.Get(e)
		rng := g.rngs[i]

		heading.Angle = g.par.intents[i].NewHeading
		pos.X += p.speed * float32(math.Cos(float64(heading.Angle)))
		pos.Y += p.speed * float32(math.Sin(float64(heading.Angle)))
		pos.X, pos.Y, heading.Angle = g.world.Reflect(pos.X, pos.Y, heading.Angle, rng)

		if forager.Mode == components.ModePanicked {
			// Panic deposits nothing: panic trails must never pollute
			// the field, or the loop being escaped would reinforce itself.
			forager.PanicTimer--
			if forager.PanicTimer <= 0 {
				forager.ExitPanic(p.maxPatience)
				g.collector.RecordPanicEnd()
			}
			continue
		}

		switch forager.Mode {
		case components.ModeSearching:
			if idx, ok := g.world.FoodNear(pos.X, pos.Y, p.pickupRadius); ok {
				g.world.Pickup(idx, 1)
				forager.Mode = components.ModeReturning
				forager.Patience = p.maxPatience
				heading.Angle = systems.NormalizeHeading(heading.Angle + math.Pi)
				g.collector.RecordPickup()
				continue
			}
			// Breadcrumb trail back to the nest while searching
			g.world.Field.Deposit(pos.X, pos.Y, systems.ChannelToHome, p.depositAmount*p.searchDepositFactor)

		case components.ModeReturning:
			if g.world.AtNest(pos.X, pos.Y, p.deliveryRadius) {
				g.delivered++
				forager.Mode = components.ModeSearching
				forager.Patience = p.maxPatience
				heading.Angle = systems.NormalizeHeading(heading.Angle + math.Pi)
				g.collector.RecordDelivery()
				continue
			}
			// Trail toward the food source while carrying
			g.world.Field.Deposit(pos.X, pos.Y, systems.ChannelToFood, p.depositAmount)
		}

		// This step reached no goal
		forager.Patience--
		if forager.Patience <= 0 {
			forager.EnterPanic(p.panicDuration)
			g.collector.RecordPanicStart()
		}
	}
}

// flushTelemetry emits window stats at window boundaries and the
// periodic world-state log line.
func (g *Game) flushTelemetry() {
	if g.collector.WindowEnded(g.tick) {
		stats := g.collector.Flush(g.tick)
		g.fillGauges(&stats)

		if g.logStats {
			stats.Log()
		}
		if g.output != nil {
			if err := g.output.WriteTelemetry(stats); err != nil {
				Logf("telemetry write failed: %v", err)
			}
		}
	}

	if g.logInterval > 0 && g.tick%g.logInterval == 0 {
		g.logWorldState()
		g.logPerfStats()
	}
}

// fillGauges adds the end-of-window state snapshot to flushed stats.
func (g *Game) fillGauges(stats *telemetry.WindowStats) {
	var searching, returning, panicked int
	query := g.agentFilter.Query()
	for query.Next() {
		_, _, forager := query.Get()
		switch forager.Mode {
		case components.ModeSearching:
			searching++
		case components.ModeReturning:
			returning++
		case components.ModePanicked:
			panicked++
		}
	}
	stats.Searching = searching
	stats.Returning = returning
	stats.Panicked = panicked

	stats.DeliveredTotal = g.delivered
	stats.FoodSources = len(g.world.Foods())
	stats.FoodRemaining = g.world.TotalFood()

	field := g.world.Field
	stats.ToFoodTotal = field.Total(systems.ChannelToFood)
	stats.ToHomeTotal = field.Total(systems.ChannelToHome)
	stats.ToFoodMean = telemetry.GridMean(field.Data(systems.ChannelToFood))
	stats.ToHomeMean = telemetry.GridMean(field.Data(systems.ChannelToHome))
}
