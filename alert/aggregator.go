package alert

import (
	"fmt"
	"math"
	"strings"

	"github.com/roadwatch/go-roadwatch/risk"
)

// Result holds the reduced alert decision for one frame's scored
// vehicles
type Result struct {
	// Flagged reports whether any vehicle was flagged as a collision
	// risk
	Flagged bool
	// Severity is the maximum severity among flagged vehicles
	Severity risk.Severity
	// Messages holds one explanatory message per flagged vehicle
	Messages []string
}

// Aggregator reduces a frame's scored vehicles into a single alert
// decision with explanatory messages.  It is pure and performs no I/O,
// presentation of the alert (drawing, audio) is the caller's concern.
type Aggregator struct {
	thresh risk.Thresholds
}

// NewAggregator returns an Aggregator using the given thresholds for
// message composition
func NewAggregator(thresh risk.Thresholds) *Aggregator {
	return &Aggregator{
		thresh: thresh,
	}
}

// Evaluate scans all flagged vehicles and returns whether an alert
// should be raised, the maximum severity found and a message per
// flagged vehicle.  An empty input produces no alert.
func (a *Aggregator) Evaluate(vehicles []risk.VehicleInfo) Result {

	res := Result{
		Severity: risk.None,
	}

	for _, vehicle := range vehicles {

		if !vehicle.Collision {
			continue
		}

		res.Flagged = true

		if vehicle.Severity > res.Severity {
			res.Severity = vehicle.Severity
		}

		res.Messages = append(res.Messages, a.message(vehicle))
	}

	return res
}

// message composes the explanatory alert string for a flagged vehicle
// from the threshold tier each risk factor falls in
func (a *Aggregator) message(vehicle risk.VehicleInfo) string {

	factors := make([]string, 0, 3)

	if vehicle.Distance <= a.thresh.CriticalDistance {
		factors = append(factors,
			fmt.Sprintf("CLOSE (Dist: %.1fm)", vehicle.Distance))
	} else if vehicle.Distance <= a.thresh.HighDistance {
		factors = append(factors,
			fmt.Sprintf("Near (Dist: %.1fm)", vehicle.Distance))
	}

	if vehicle.Speed >= a.thresh.CriticalSpeed {
		factors = append(factors,
			fmt.Sprintf("FAST (Speed: %.1fpx/s)", vehicle.Speed))
	} else if vehicle.Speed >= a.thresh.HighSpeed {
		factors = append(factors,
			fmt.Sprintf("Fast (Speed: %.1fpx/s)", vehicle.Speed))
	}

	angleFromCenter := angleFromHeading(vehicle.Angle, vehicle.View)

	if angleFromCenter <= a.thresh.CriticalAngle {
		factors = append(factors,
			fmt.Sprintf("DIRECT PATH (Angle: %.1fdeg)", vehicle.Angle))
	} else if angleFromCenter <= a.thresh.HighAngle {
		factors = append(factors,
			fmt.Sprintf("On Path (Angle: %.1fdeg)", vehicle.Angle))
	}

	factorsStr := "Risk detected"

	if len(factors) > 0 {
		factorsStr = strings.Join(factors, " | ")
	}

	if math.IsInf(vehicle.TTC, 1) {
		return fmt.Sprintf("Vehicle ID:%d [%s] - %s",
			vehicle.ID, strings.ToUpper(vehicle.Severity.String()),
			factorsStr)
	}

	return fmt.Sprintf("Vehicle ID:%d [%s] - %s | TTC: %.1fs",
		vehicle.ID, strings.ToUpper(vehicle.Severity.String()),
		factorsStr, vehicle.TTC)
}

// angleFromHeading returns the shortest arc difference in degrees
// between the reported angle and the view's straight ahead heading
func angleFromHeading(angle float32, view risk.View) float32 {

	ref := float32(0.0)

	if view == risk.Left || view == risk.Right {
		ref = 90.0
	}

	diff := angle - ref

	if diff < 0 {
		diff = -diff
	}

	if diff > 180.0 {
		diff = 360.0 - diff
	}

	return diff
}
