package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindowBoundary(t *testing.T) {
	c := NewCollector(10)

	if c.WindowEnded(9) {
		t.Error("window ended before windowTicks elapsed")
	}
	if !c.WindowEnded(10) {
		t.Error("window not ended after windowTicks elapsed")
	}

	c.Flush(10)
	if c.WindowEnded(19) {
		t.Error("window boundary did not advance after flush")
	}
	if !c.WindowEnded(20) {
		t.Error("second window not ended at tick 20")
	}
}

func TestCollectorFlushResetsCounters(t *testing.T) {
	c := NewCollector(100)

	c.RecordPickup()
	c.RecordPickup()
	c.RecordDelivery()
	c.RecordPanicStart()
	c.RecordPanicEnd()
	c.RecordFoodPlaced(250)
	c.RecordFoodPlaced(50)

	stats := c.Flush(100)
	if stats.Pickups != 2 || stats.Deliveries != 1 {
		t.Errorf("expected 2 pickups / 1 delivery, got %d / %d", stats.Pickups, stats.Deliveries)
	}
	if stats.PanicsStarted != 1 || stats.PanicsEnded != 1 {
		t.Errorf("expected 1 panic start/end, got %d / %d", stats.PanicsStarted, stats.PanicsEnded)
	}
	if stats.FoodPlaced != 2 || stats.FoodPlacedAmount != 300 {
		t.Errorf("expected 2 placements totaling 300, got %d / %f", stats.FoodPlaced, stats.FoodPlacedAmount)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 100 {
		t.Errorf("bad window bounds: [%d, %d]", stats.WindowStartTick, stats.WindowEndTick)
	}

	empty := c.Flush(200)
	if empty.Pickups != 0 || empty.FoodPlacedAmount != 0 {
		t.Error("counters survived a flush")
	}
	if empty.WindowStartTick != 100 {
		t.Errorf("expected next window to start at 100, got %d", empty.WindowStartTick)
	}
}

func TestGridMean(t *testing.T) {
	grid := []float32{1, 2, 3, 4}
	if mean := GridMean(grid); math.Abs(mean-2.5) > 1e-9 {
		t.Errorf("expected mean 2.5, got %f", mean)
	}
	if mean := GridMean(nil); mean != 0 {
		t.Errorf("expected 0 for empty grid, got %f", mean)
	}
}
