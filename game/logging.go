package game

import (
	"fmt"
	"io"
	"time"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// logWriter is the destination for log output.
var logWriter io.Writer

// SetLogWriter sets the log output destination.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Logf writes a formatted log message.
func Logf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if logWriter != nil {
		fmt.Fprintln(logWriter, msg)
	} else {
		fmt.Println(msg)
	}
}

// logPerfStats logs performance statistics.
func (g *Game) logPerfStats() {
	stats := g.perf.Stats()
	Logf("=== Perf @ Tick %d ===", g.tick)
	Logf("Avg tick: %s (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond)

	for _, name := range telemetry.PhaseOrder {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		Logf("  %-12s %10s  %5.1f%%", name, avg.Round(time.Microsecond), stats.PhasePct[name])
	}
	Logf("")
}

// logWorldState logs the current colony and field state.
func (g *Game) logWorldState() {
	var searching, returning, panicked int
	var minPatience int32 = 1<<31 - 1

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
		if forager.Mode != components.ModePanicked && forager.Patience < minPatience {
			minPatience = forager.Patience
		}
	}

	field := g.world.Field
	Logf("=== World @ Tick %d ===", g.tick)
	Logf("Agents: %d searching, %d returning, %d panicked (min patience %d)",
		searching, returning, panicked, minPatience)
	Logf("Food: %d sources, %.0f units remaining, %d delivered",
		len(g.world.Foods()), g.world.TotalFood(), g.delivered)
	Logf("Field: to_food total %.1f, to_home total %.1f",
		field.Total(systems.ChannelToFood), field.Total(systems.ChannelToHome))
}
