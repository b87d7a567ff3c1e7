// Package components defines ECS components for the simulation.
package components

// Position represents an agent's continuous world position.
type Position struct {
	X, Y float32
}

// Heading represents an agent's facing direction in radians.
type Heading struct {
	Angle float32
}

// Mode is the behavioral state of a forager.
type Mode uint8

const (
	// ModeSearching: no food carried, following the to-food channel.
	ModeSearching Mode = iota
	// ModeReturning: carrying food, following the to-home channel plus nest gravity.
	ModeReturning
	// ModePanicked: ignoring all signals, moving randomly until the timer runs out.
	ModePanicked
)

// String returns the mode name for logs and state export.
func (m Mode) String() string {
	switch m {
	case ModeSearching:
		return "searching"
	case ModeReturning:
		return "returning"
	case ModePanicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Forager holds the agent state machine.
//
// The counters are variant-local: Patience is meaningful only while
// searching or returning, PanicTimer and Resume only while panicked.
// Invariant: Mode == ModePanicked exactly when PanicTimer > 0.
// Carrying-food is implied by the mode (Returning, or a panic that will
// resume Returning) rather than stored as a separate flag.
type Forager struct {
	Mode       Mode
	Resume     Mode  // Mode to restore when panic ends
	Patience   int32 // Remaining unproductive steps before panic
	PanicTimer int32 // Remaining panic ticks
}

// Carrying reports whether the agent is holding food.
func (f *Forager) Carrying() bool {
	if f.Mode == ModePanicked {
		return f.Resume == ModeReturning
	}
	return f.Mode == ModeReturning
}

// EnterPanic switches the forager into the panicked state for the given
// duration, remembering which behavioral mode to resume.
func (f *Forager) EnterPanic(duration int32) {
	if f.Mode != ModePanicked {
		f.Resume = f.Mode
	}
	f.Mode = ModePanicked
	f.PanicTimer = duration
	f.Patience = 0
}

// ExitPanic restores the pre-panic behavioral mode with a fresh patience budget.
func (f *Forager) ExitPanic(maxPatience int32) {
	f.Mode = f.Resume
	f.PanicTimer = 0
	f.Patience = maxPatience
}
