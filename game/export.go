package game

import (
	"github.com/pthm-cable/colony/systems"
)

// FrameState is the read-only state export consumed once per frame by the
// presentation layer. Everything is copied; mutating a FrameState never
// touches the simulation.
type FrameState struct {
	Tick int32 `json:"tick"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`

	NestX float32 `json:"nest_x"`
	NestY float32 `json:"nest_y"`

	Agents []AgentState `json:"agents"`
	Foods  []FoodState  `json:"foods"`
	Field  FieldState   `json:"field"`

	Delivered int64 `json:"delivered"`
}

// AgentState holds one agent's drawable state.
type AgentState struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	Heading float32 `json:"heading"`
	Mode    string  `json:"mode"`
}

// FoodState holds one food source's drawable state.
type FoodState struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Amount float32 `json:"amount"`
}

// FieldState holds per-channel pheromone grid copies.
type FieldState struct {
	Cols     int     `json:"cols"`
	Rows     int     `json:"rows"`
	CellSize float32 `json:"cell_size"`

	ToFood []float32 `json:"to_food"`
	ToHome []float32 `json:"to_home"`
}

// Export builds a FrameState snapshot of the current tick.
// Call between ticks, never concurrently with Step.
func (g *Game) Export() FrameState {
	w := g.world
	field := w.Field
	cols, rows := field.GridSize()

	fs := FrameState{
		Tick:        g.tick,
		WorldWidth:  w.Width,
		WorldHeight: w.Height,
		NestX:       w.NestX,
		NestY:       w.NestY,
		Delivered:   g.delivered,
		Agents:      make([]AgentState, 0, len(g.entities)),
		Field: FieldState{
			Cols:     cols,
			Rows:     rows,
			CellSize: field.CellSize(),
			ToFood:   append([]float32(nil), field.Data(systems.ChannelToFood)...),
			ToHome:   append([]float32(nil), field.Data(systems.ChannelToHome)...),
		},
	}

	for _, e := range g.entities {
		pos := g.posMap.Get(e)
		heading := g.headingMap.Get(e)
		forager := g.foragerMap.Get(e)
		fs.Agents = append(fs.Agents, AgentState{
			X:       pos.X,
			Y:       pos.Y,
			Heading: heading.Angle,
			Mode:    forager.Mode.String(),
		})
	}

	for _, f := range w.Foods() {
		fs.Foods = append(fs.Foods, FoodState{X: f.X, Y: f.Y, Amount: f.Amount})
	}

	return fs
}
