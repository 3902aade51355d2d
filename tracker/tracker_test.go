package tracker

import (
	"testing"
	"time"
)

// testClock returns a clock function that advances by the given step
// on every tracker update
func testClock(step time.Duration) func() time.Time {
	now := time.Unix(1700000000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

// det is a shorthand for building a Detection from box coordinates
func det(x, y, w, h float32) Detection {
	return NewDetection(NewRect(x, y, w, h), 2, 0.9)
}

// TestTrackerSpawn checks that every detection with no matching track
// spawns a new track with a unique ID and a single sample history
func TestTrackerSpawn(t *testing.T) {

	trk := NewTracker(DefaultParams())
	trk.now = testClock(33 * time.Millisecond)

	err := trk.Update([]Detection{
		det(100, 100, 50, 40),
		det(500, 500, 60, 50),
	})

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}

	if vehicles[0].ID != 1 || vehicles[1].ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d",
			vehicles[0].ID, vehicles[1].ID)
	}

	// new tracks start at the detection center with zero velocity and
	// zero speed
	if !almostEqual(vehicles[0].Position.X, 125.0, 1e-3) ||
		!almostEqual(vehicles[0].Position.Y, 120.0, 1e-3) {
		t.Errorf("expected position (125,120), got %v", vehicles[0].Position)
	}

	if vehicles[0].Speed != 0 {
		t.Errorf("expected zero speed, got %v", vehicles[0].Speed)
	}

	if len(vehicles[0].Trajectory) != 1 {
		t.Errorf("expected single sample trajectory, got %d points",
			len(vehicles[0].Trajectory))
	}
}

// TestTrackerIdentity checks detections near the predicted positions
// keep their track identity across frames
func TestTrackerIdentity(t *testing.T) {

	trk := NewTracker(DefaultParams())
	trk.now = testClock(33 * time.Millisecond)

	frames := [][]Detection{
		{det(100, 100, 50, 40), det(500, 500, 60, 50)},
		{det(110, 100, 50, 40), det(495, 505, 60, 50)},
		{det(120, 100, 50, 40), det(490, 510, 60, 50)},
	}

	for _, frame := range frames {
		if err := trk.Update(frame); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}

	if vehicles[0].ID != 1 || vehicles[1].ID != 2 {
		t.Errorf("expected IDs 1 and 2, got %d and %d",
			vehicles[0].ID, vehicles[1].ID)
	}

	// track 1 moved right, its position estimate follows
	if vehicles[0].Position.X < 135.0 || vehicles[0].Position.X > 146.0 {
		t.Errorf("expected track 1 near x=145, got %v", vehicles[0].Position.X)
	}

	if len(vehicles[0].Trajectory) != 3 {
		t.Errorf("expected 3 trajectory points, got %d",
			len(vehicles[0].Trajectory))
	}
}

// TestTrackerGate checks that detections beyond the gating distance
// spawn new tracks rather than cross assigning to distant tracks
func TestTrackerGate(t *testing.T) {

	trk := NewTracker(DefaultParams())
	trk.now = testClock(33 * time.Millisecond)

	if err := trk.Update([]Detection{
		det(100, 100, 50, 40),
		det(500, 500, 60, 50),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// both detections jump more than the 100 px gate away
	if err := trk.Update([]Detection{
		det(300, 300, 50, 40),
		det(700, 700, 60, 50),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// the prior tracks are retained internally but aged
	if trk.Count() != 4 {
		t.Fatalf("expected 4 live tracks, got %d", trk.Count())
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 2 {
		t.Fatalf("expected 2 visible vehicles, got %d", len(vehicles))
	}

	// only the newly spawned tracks are visible
	if vehicles[0].ID != 3 || vehicles[1].ID != 4 {
		t.Errorf("expected IDs 3 and 4, got %d and %d",
			vehicles[0].ID, vehicles[1].ID)
	}
}

// TestTrackerTieBreak checks equidistant candidates resolve to the
// first track in scan order, with no randomness
func TestTrackerTieBreak(t *testing.T) {

	for run := 0; run < 5; run++ {

		trk := NewTracker(DefaultParams())
		trk.now = testClock(33 * time.Millisecond)

		if err := trk.Update([]Detection{
			det(65, 80, 50, 40),  // center (90,100)
			det(85, 80, 50, 40),  // center (110,100)
		}); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		// one detection equidistant from both predictions
		if err := trk.Update([]Detection{
			det(75, 80, 50, 40), // center (100,100)
		}); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		vehicles := trk.Vehicles()

		if len(vehicles) != 1 {
			t.Fatalf("expected 1 visible vehicle, got %d", len(vehicles))
		}

		if vehicles[0].ID != 1 {
			t.Errorf("run %d: expected the tie to resolve to track 1, got %d",
				run, vehicles[0].ID)
		}
	}
}

// TestTrackerDisappearance checks the counter increments by one per
// miss, resets on a match, and eviction occurs once it exceeds the
// maximum
func TestTrackerDisappearance(t *testing.T) {

	params := DefaultParams()
	params.MaxDisappeared = 2

	trk := NewTracker(params)
	trk.now = testClock(33 * time.Millisecond)

	if err := trk.Update([]Detection{det(100, 100, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// miss one frame, the track is withheld from output but retained
	if err := trk.Update(nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if trk.Count() != 1 {
		t.Fatalf("expected track retained, got %d tracks", trk.Count())
	}

	if len(trk.Vehicles()) != 0 {
		t.Errorf("expected missed track withheld from output")
	}

	// a match resets the counter and restores visibility
	if err := trk.Update([]Detection{det(102, 100, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 1 || vehicles[0].ID != 1 {
		t.Fatalf("expected track 1 visible again, got %v", vehicles)
	}

	// three consecutive misses push the counter past the maximum
	for i := 0; i < 3; i++ {
		if err := trk.Update(nil); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	if trk.Count() != 0 {
		t.Errorf("expected track evicted, got %d tracks", trk.Count())
	}
}

// TestTrackerIDsNeverReused checks track IDs stay unique even after
// eviction
func TestTrackerIDsNeverReused(t *testing.T) {

	params := DefaultParams()
	params.MaxDisappeared = 0

	trk := NewTracker(params)
	trk.now = testClock(33 * time.Millisecond)

	if err := trk.Update([]Detection{det(100, 100, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// one miss evicts with MaxDisappeared 0
	if err := trk.Update(nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if trk.Count() != 0 {
		t.Fatalf("expected eviction, got %d tracks", trk.Count())
	}

	if err := trk.Update([]Detection{det(100, 100, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 1 || vehicles[0].ID != 2 {
		t.Errorf("expected fresh track ID 2, got %v", vehicles)
	}
}

// TestTrackerSpeed checks the speed history holds displacement over
// elapsed wall time and that zero elapsed time skips the sample
func TestTrackerSpeed(t *testing.T) {

	trk := NewTracker(DefaultParams())
	trk.now = testClock(100 * time.Millisecond)

	if err := trk.Update([]Detection{det(75, 80, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// move 10 px in 100 ms, instantaneous speed 100 px/s, mean over
	// the history {0, 100} is 50
	if err := trk.Update([]Detection{det(85, 80, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}

	if !almostEqual(vehicles[0].Speed, 50.0, 1e-2) {
		t.Errorf("expected mean speed 50, got %v", vehicles[0].Speed)
	}

	// with no elapsed wall time the speed sample is skipped
	trk.now = testClock(0)

	if err := trk.Update([]Detection{det(95, 80, 50, 40)}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	vehicles = trk.Vehicles()

	if !almostEqual(vehicles[0].Speed, 50.0, 1e-2) {
		t.Errorf("expected speed history unchanged, got %v", vehicles[0].Speed)
	}
}

// TestTrackerHistoryBounds checks the position and speed histories are
// bounded by their configured capacities
func TestTrackerHistoryBounds(t *testing.T) {

	params := DefaultParams()
	params.PositionHistorySize = 5
	params.SpeedHistorySize = 3

	trk := NewTracker(params)
	trk.now = testClock(100 * time.Millisecond)

	for i := 0; i < 10; i++ {
		err := trk.Update([]Detection{
			det(float32(75+i*5), 80, 50, 40),
		})

		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	vehicles := trk.Vehicles()

	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle, got %d", len(vehicles))
	}

	if len(vehicles[0].Trajectory) != 5 {
		t.Errorf("expected trajectory capped at 5, got %d",
			len(vehicles[0].Trajectory))
	}

	// constant 50 px/s motion, the bounded mean settles on it
	if !almostEqual(vehicles[0].Speed, 50.0, 1e-2) {
		t.Errorf("expected mean speed 50, got %v", vehicles[0].Speed)
	}
}

// TestTrackerDeterminism checks repeated runs over identical inputs
// produce identical outputs
func TestTrackerDeterminism(t *testing.T) {

	frames := [][]Detection{
		{det(100, 100, 50, 40), det(500, 500, 60, 50), det(300, 200, 40, 30)},
		{det(108, 102, 50, 40), det(490, 505, 60, 50)},
		{det(116, 104, 50, 40), det(480, 510, 60, 50), det(640, 100, 40, 30)},
		nil,
		{det(124, 106, 50, 40)},
	}

	run := func() []TrackedVehicle {
		trk := NewTracker(DefaultParams())
		trk.now = testClock(33 * time.Millisecond)

		for _, frame := range frames {
			if err := trk.Update(frame); err != nil {
				t.Fatalf("update failed: %v", err)
			}
		}

		return trk.Vehicles()
	}

	a := run()
	b := run()

	if len(a) != len(b) {
		t.Fatalf("runs differ in vehicle count: %d vs %d", len(a), len(b))
	}

	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("vehicle %d: IDs differ, %d vs %d", i, a[i].ID, b[i].ID)
		}

		if a[i].Position != b[i].Position || a[i].Velocity != b[i].Velocity {
			t.Errorf("vehicle %d: state differs between runs", i)
		}
	}
}
