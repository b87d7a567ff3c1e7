package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one tick window.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Events during the window
	Pickups          int     `csv:"pickups"`
	Deliveries       int     `csv:"deliveries"`
	PanicsStarted    int     `csv:"panics_started"`
	PanicsEnded      int     `csv:"panics_ended"`
	FoodPlaced       int     `csv:"food_placed"`
	FoodPlacedAmount float64 `csv:"food_placed_amount"`

	// Colony state at window end
	Searching      int   `csv:"searching"`
	Returning      int   `csv:"returning"`
	Panicked       int   `csv:"panicked"`
	DeliveredTotal int64 `csv:"delivered_total"`

	// Food state at window end
	FoodSources   int     `csv:"food_sources"`
	FoodRemaining float64 `csv:"food_remaining"`

	// Field state at window end
	ToFoodTotal float64 `csv:"to_food_total"`
	ToFoodMean  float64 `csv:"to_food_mean"`
	ToHomeTotal float64 `csv:"to_home_total"`
	ToHomeMean  float64 `csv:"to_home_mean"`
}

// Log emits the window stats as a structured log record.
func (s WindowStats) Log() {
	slog.Info("window stats",
		"window_end", s.WindowEndTick,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"delivered_total", s.DeliveredTotal,
		"panics_started", s.PanicsStarted,
		"searching", s.Searching,
		"returning", s.Returning,
		"panicked", s.Panicked,
		"food_remaining", s.FoodRemaining,
		"to_food_mean", s.ToFoodMean,
		"to_home_mean", s.ToHomeMean,
	)
}

// GridMean returns the mean concentration of a pheromone grid.
func GridMean(grid []float32) float64 {
	if len(grid) == 0 {
		return 0
	}
	values := make([]float64, len(grid))
	for i, v := range grid {
		values[i] = float64(v)
	}
	return stat.Mean(values, nil)
}
