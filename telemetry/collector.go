// Package telemetry aggregates simulation events into window statistics
// and writes them to structured output.
package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	// Event counters for the current window
	pickups          int
	deliveries       int
	panicsEnter      int
	panicsExit       int
	foodPlaced       int
	foodPlacedAmount float64
}

// NewCollector creates a stats collector with the given window length in ticks.
func NewCollector(windowTicks int32) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordPickup records an agent picking up food.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// RecordDelivery records a food delivery at the nest.
func (c *Collector) RecordDelivery() {
	c.deliveries++
}

// RecordPanicStart records an agent entering the panicked state.
func (c *Collector) RecordPanicStart() {
	c.panicsEnter++
}

// RecordPanicEnd records an agent recovering from panic.
func (c *Collector) RecordPanicEnd() {
	c.panicsExit++
}

// RecordFoodPlaced records an external food placement event.
func (c *Collector) RecordFoodPlaced(amount float64) {
	c.foodPlaced++
	c.foodPlacedAmount += amount
}

// WindowEnded reports whether the current window is complete at the given tick.
func (c *Collector) WindowEnded(tick int32) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush produces the stats for the finished window, resets the event
// counters, and starts the next window. Gauge fields (mode counts, field
// totals) are filled in by the caller, which owns that state.
func (c *Collector) Flush(tick int32) WindowStats {
	stats := WindowStats{
		WindowStartTick:  c.windowStartTick,
		WindowEndTick:    tick,
		Pickups:          c.pickups,
		Deliveries:       c.deliveries,
		PanicsStarted:    c.panicsEnter,
		PanicsEnded:      c.panicsExit,
		FoodPlaced:       c.foodPlaced,
		FoodPlacedAmount: c.foodPlacedAmount,
	}

	c.pickups = 0
	c.deliveries = 0
	c.panicsEnter = 0
	c.panicsExit = 0
	c.foodPlaced = 0
	c.foodPlacedAmount = 0
	c.windowStartTick = tick

	return stats
}
