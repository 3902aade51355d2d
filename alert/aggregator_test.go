package alert

import (
	"math"
	"testing"

	"github.com/roadwatch/go-roadwatch/risk"
	"github.com/roadwatch/go-roadwatch/tracker"
)

func testAggregator() *Aggregator {
	return NewAggregator(risk.DefaultThresholds())
}

// info builds a flagged VehicleInfo with the given risk factors
func info(id int, severity risk.Severity, distance, speed,
	angle float32, view risk.View, ttc float64) risk.VehicleInfo {

	return risk.VehicleInfo{
		TrackedVehicle: tracker.TrackedVehicle{
			ID:    id,
			Speed: speed,
		},
		View:      view,
		Distance:  distance,
		Angle:     angle,
		Collision: true,
		Severity:  severity,
		TTC:       ttc,
	}
}

// TestEvaluateEmpty checks an empty frame produces no alert
func TestEvaluateEmpty(t *testing.T) {

	a := testAggregator()

	res := a.Evaluate(nil)

	if res.Flagged {
		t.Errorf("expected no alert for empty input")
	}

	if res.Severity != risk.None {
		t.Errorf("expected severity none, got %v", res.Severity)
	}

	if len(res.Messages) != 0 {
		t.Errorf("expected no messages, got %d", len(res.Messages))
	}
}

// TestEvaluateMaxSeverity checks the result severity is the maximum
// among flagged vehicles only, and each flagged vehicle gets a message
func TestEvaluateMaxSeverity(t *testing.T) {

	a := testAggregator()

	unflagged := info(5, risk.High, 50, 4, 120, risk.Front, math.Inf(1))
	unflagged.Collision = false

	vehicles := []risk.VehicleInfo{
		info(1, risk.Low, 25, 8, 55, risk.Front, math.Inf(1)),
		unflagged,
		info(2, risk.Medium, 15, 12, 40, risk.Front, math.Inf(1)),
	}

	res := a.Evaluate(vehicles)

	if !res.Flagged {
		t.Errorf("expected alert to be flagged")
	}

	// the unflagged High vehicle must not contribute
	if res.Severity != risk.Medium {
		t.Errorf("expected severity medium, got %v", res.Severity)
	}

	if len(res.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(res.Messages))
	}
}

// TestMessageComposition checks the explanatory message for each
// combination of threshold tier factors and the TTC suffix
func TestMessageComposition(t *testing.T) {

	a := testAggregator()

	tests := []struct {
		name     string
		vehicle  risk.VehicleInfo
		expected string
	}{
		{
			"all critical factors with ttc",
			info(7, risk.Critical, 3.0, 25.0, 10.0, risk.Front, 1.2),
			"Vehicle ID:7 [CRITICAL] - CLOSE (Dist: 3.0m) | " +
				"FAST (Speed: 25.0px/s) | DIRECT PATH (Angle: 10.0deg) | " +
				"TTC: 1.2s",
		},
		{
			"all high factors without ttc",
			info(2, risk.Low, 8.0, 16.0, 25.0, risk.Front, math.Inf(1)),
			"Vehicle ID:2 [LOW] - Near (Dist: 8.0m) | " +
				"Fast (Speed: 16.0px/s) | On Path (Angle: 25.0deg)",
		},
		{
			"no factor in a reportable tier",
			info(4, risk.Medium, 50.0, 8.0, 100.0, risk.Front, math.Inf(1)),
			"Vehicle ID:4 [MEDIUM] - Risk detected",
		},
		{
			"side view angle measured from its heading",
			info(9, risk.High, 50.0, 8.0, 95.0, risk.Left, math.Inf(1)),
			"Vehicle ID:9 [HIGH] - DIRECT PATH (Angle: 95.0deg)",
		},
	}

	for _, tt := range tests {
		res := a.Evaluate([]risk.VehicleInfo{tt.vehicle})

		if len(res.Messages) != 1 {
			t.Fatalf("%s: expected 1 message, got %d", tt.name,
				len(res.Messages))
		}

		if res.Messages[0] != tt.expected {
			t.Errorf("%s:\nexpected %q\ngot      %q", tt.name,
				tt.expected, res.Messages[0])
		}
	}
}
