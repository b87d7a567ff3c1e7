// Package systems provides the pheromone field and world state for the simulation.
package systems

import (
	"errors"
	"math"

	"github.com/pthm-cable/colony/config"
)

// Channel selects one pheromone layer.
type Channel uint8

const (
	// ChannelToFood is laid by returning agents and followed by searchers.
	ChannelToFood Channel = iota
	// ChannelToHome is laid by searching agents and followed by returners.
	ChannelToHome

	// NumChannels is the number of pheromone layers.
	NumChannels = 2
)

// String returns the channel name for logs and telemetry.
func (c Channel) String() string {
	switch c {
	case ChannelToFood:
		return "to_food"
	case ChannelToHome:
		return "to_home"
	default:
		return "unknown"
	}
}

// ErrOutOfBounds reports a cell index or channel outside the grid.
var ErrOutOfBounds = errors.New("out of bounds")

// PheromoneField is a fixed-size scalar grid per pheromone channel.
//
// Deposits made during the agent phase are buffered and only folded into
// the live grids by ApplyDeposits, so every agent in a tick senses the
// field exactly as it stood at the end of the previous tick. Buffered
// deposits reduce by summation, which keeps the result independent of
// agent update order.
type PheromoneField struct {
	Cols, Rows int

	cellSize       float32
	worldW, worldH float32

	grids    [NumChannels][]float32
	deposits [NumChannels][]float32
	tmp      []float32 // scratch buffer for diffusion

	// Parameters
	EvaporationRate   float32 // multiplicative decay per step
	DiffusionRate     float32 // neighbor blend weight in [0,1]
	DiffusionInterval int     // diffuse every N steps
	MaxPheromone      float32 // per-cell cap applied when deposits land

	stepCount int
}

// NewPheromoneField allocates the field from config. Dimensions are fixed
// for the lifetime of the field; it is never resized.
func NewPheromoneField(cfg *config.Config) *PheromoneField {
	cols := cfg.Derived.Cols
	rows := cfg.Derived.Rows

	f := &PheromoneField{
		Cols:     cols,
		Rows:     rows,
		cellSize: float32(cfg.Field.CellSize),
		worldW:   cfg.Derived.WorldW32,
		worldH:   cfg.Derived.WorldH32,

		tmp: make([]float32, cols*rows),

		EvaporationRate:   float32(cfg.Field.EvaporationRate),
		DiffusionRate:     float32(cfg.Field.DiffusionRate),
		DiffusionInterval: cfg.Field.DiffusionInterval,
		MaxPheromone:      float32(cfg.Field.MaxPheromone),
	}
	for ch := range f.grids {
		f.grids[ch] = make([]float32, cols*rows)
		f.deposits[ch] = make([]float32, cols*rows)
	}
	return f
}

// CellIndex maps a world position to grid coordinates, clamped into range.
func (f *PheromoneField) CellIndex(x, y float32) (col, row int) {
	col = int(x / f.cellSize)
	row = int(y / f.cellSize)
	if col < 0 {
		col = 0
	} else if col >= f.Cols {
		col = f.Cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= f.Rows {
		row = f.Rows - 1
	}
	return col, row
}

// Deposit buffers a pheromone deposit at the given world position.
// Positions outside the world clamp to the nearest valid cell.
// Non-positive amounts and unknown channels are dropped.
func (f *PheromoneField) Deposit(x, y float32, ch Channel, amount float32) {
	if ch >= NumChannels || amount <= 0 {
		return
	}
	col, row := f.CellIndex(x, y)
	f.deposits[ch][row*f.Cols+col] += amount
}

// ApplyDeposits folds all buffered deposits into the live grids, capping
// each cell at MaxPheromone, and clears the buffers.
func (f *PheromoneField) ApplyDeposits() {
	for ch := range f.grids {
		grid := f.grids[ch]
		dep := f.deposits[ch]
		for i, d := range dep {
			if d == 0 {
				continue
			}
			v := grid[i] + d
			if v > f.MaxPheromone {
				v = f.MaxPheromone
			}
			grid[i] = v
			dep[i] = 0
		}
	}
}

// Sample returns the interpolated concentration at a world position.
// Bilinear over cell centers: deterministic and continuous inside the
// world, so steering never sees cell-boundary discontinuities.
// Positions outside the world sample as 0 (agents reflect before the
// border, so sensors only cross it transiently).
func (f *PheromoneField) Sample(x, y float32, ch Channel) float32 {
	if ch >= NumChannels {
		return 0
	}
	if x < 0 || y < 0 || x >= f.worldW || y >= f.worldH {
		return 0
	}

	// Position in cell-center space
	fx := x/f.cellSize - 0.5
	fy := y/f.cellSize - 0.5

	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	grid := f.grids[ch]
	at := func(col, row int) float32 {
		// Border half-cells extend the edge value outward
		if col < 0 {
			col = 0
		} else if col >= f.Cols {
			col = f.Cols - 1
		}
		if row < 0 {
			row = 0
		} else if row >= f.Rows {
			row = f.Rows - 1
		}
		return grid[row*f.Cols+col]
	}

	a := at(x0, y0) + (at(x0+1, y0)-at(x0, y0))*tx
	b := at(x0, y0+1) + (at(x0+1, y0+1)-at(x0, y0+1))*tx
	return a + (b-a)*ty
}

// At returns the concentration of a single cell, or ErrOutOfBounds if the
// indices or channel fall outside the grid.
func (f *PheromoneField) At(col, row int, ch Channel) (float32, error) {
	if ch >= NumChannels || col < 0 || col >= f.Cols || row < 0 || row >= f.Rows {
		return 0, ErrOutOfBounds
	}
	return f.grids[ch][row*f.Cols+col], nil
}

// Step advances the field by one tick: diffuse, then evaporate.
//
// The order is fixed: diffusing first spreads the undecayed signal, which
// widens trails and shortens the lifetime of stale ones; swapping the two
// would change both emergent trail width and persistence. Diffusion runs
// every DiffusionInterval steps; evaporation runs every step.
func (f *PheromoneField) Step() {
	f.stepCount++

	if f.DiffusionRate > 0 && f.stepCount%f.DiffusionInterval == 0 {
		for ch := range f.grids {
			f.diffuse(f.grids[ch])
		}
	}

	if f.EvaporationRate > 0 {
		keep := 1 - f.EvaporationRate
		for ch := range f.grids {
			grid := f.grids[ch]
			for i, v := range grid {
				v *= keep
				if v < 0 {
					v = 0
				}
				grid[i] = v
			}
		}
	}
}

// diffuse applies a 5-point stencil blend with a Neumann boundary: edge
// cells exchange only with their in-bounds neighbors, so diffusion on its
// own conserves total concentration exactly.
func (f *PheromoneField) diffuse(grid []float32) {
	a := f.DiffusionRate * 0.25
	w, h := f.Cols, f.Rows
	dst := f.tmp

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			c := grid[i]

			var sum float32
			var n float32
			if x > 0 {
				sum += grid[i-1]
				n++
			}
			if x < w-1 {
				sum += grid[i+1]
				n++
			}
			if y > 0 {
				sum += grid[i-w]
				n++
			}
			if y < h-1 {
				sum += grid[i+w]
				n++
			}

			v := c + a*(sum-n*c)
			if v < 0 {
				v = 0
			}
			dst[i] = v
		}
	}

	copy(grid, dst)
}

// Total returns the summed concentration of one channel.
func (f *PheromoneField) Total(ch Channel) float64 {
	if ch >= NumChannels {
		return 0
	}
	var total float64
	for _, v := range f.grids[ch] {
		total += float64(v)
	}
	return total
}

// Data returns the live grid for one channel. Read-only for callers;
// export paths must copy.
func (f *PheromoneField) Data(ch Channel) []float32 {
	if ch >= NumChannels {
		return nil
	}
	return f.grids[ch]
}

// GridSize returns the grid dimensions.
func (f *PheromoneField) GridSize() (int, int) {
	return f.Cols, f.Rows
}

// CellSize returns world units per grid cell.
func (f *PheromoneField) CellSize() float32 {
	return f.cellSize
}
