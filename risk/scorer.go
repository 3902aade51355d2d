package risk

import (
	"math"

	"github.com/roadwatch/go-roadwatch/tracker"
)

// VehicleInfo holds the complete per frame risk analysis of a tracked
// vehicle
type VehicleInfo struct {
	tracker.TrackedVehicle
	// View the vehicle was observed from
	View View
	// Distance to the vehicle in meters
	Distance float32
	// Angle is the bearing of the vehicle in degrees, 0-360, remapped
	// so 0 points straight ahead for the view
	Angle float32
	// Collision reports whether a collision risk was detected
	Collision bool
	// Severity is the risk level of the vehicle
	Severity Severity
	// TTC is the estimated time to collision in seconds, +Inf when the
	// vehicle is not closing
	TTC float64
}

// Scorer estimates collision risk for tracked vehicles from their
// bounding box geometry and motion.  It holds no mutable state and a
// separate instance is used per camera view.
type Scorer struct {
	frameWidth  float32
	frameHeight float32
	centerX     float32
	centerY     float32
	calib       Calibration
	thresh      Thresholds
}

// NewScorer returns a Scorer for frames of the given pixel dimensions
func NewScorer(frameWidth, frameHeight int, calib Calibration,
	thresh Thresholds) *Scorer {

	return &Scorer{
		frameWidth:  float32(frameWidth),
		frameHeight: float32(frameHeight),
		centerX:     float32(frameWidth) / 2,
		centerY:     float32(frameHeight) / 2,
		calib:       calib,
		thresh:      thresh,
	}
}

// Distance estimates the distance to a vehicle in meters from its
// bounding box height using the pinhole camera model.  The estimate is
// clamped to a plausible range and a degenerate box height falls back
// to the default far distance.
func (s *Scorer) Distance(rect tracker.Rect, view View) float32 {

	if rect.H <= 0 {
		return s.calib.DefaultDistance
	}

	distPixels := (s.calib.RealVehicleWidth * s.calib.FocalLength) / rect.H
	distMeters := distPixels / s.calib.PixelsPerMeter

	// clamp to reasonable values
	if distMeters < s.calib.MinDistance {
		distMeters = s.calib.MinDistance
	}

	if distMeters > s.calib.MaxDistance {
		distMeters = s.calib.MaxDistance
	}

	return distMeters
}

// Angle returns the bearing of the vehicle's bounding box center
// relative to the frame center in degrees, normalized to 0-360 and
// remapped per view so that 0 means straight ahead in every view
func (s *Scorer) Angle(rect tracker.Rect, view View) float32 {

	cx, cy := rect.Center()

	dx := cx - s.centerX
	dy := cy - s.centerY

	angle := float32(math.Atan2(float64(dy), float64(dx)) * 180.0 / math.Pi)

	if angle < 0 {
		angle += 360.0
	}

	// remap per camera mounting so every view shares the same heading
	switch view {
	case Back:
		angle = normalizeAngle(angle + 180.0)
	case Left:
		angle = normalizeAngle(angle + 90.0)
	case Right:
		angle = normalizeAngle(angle - 90.0)
	}

	return angle
}

// Predict estimates whether the vehicle is on a collision course.  It
// returns the collision flag, the time to collision in seconds (+Inf
// when the vehicle is not closing) and the risk severity.
func (s *Scorer) Predict(vehicle tracker.TrackedVehicle, distance,
	angle float32, view View) (bool, float64, Severity) {

	// use the tracked mean speed or the instantaneous velocity
	// magnitude, whichever is larger
	speedMag := float32(math.Hypot(float64(vehicle.Velocity.X),
		float64(vehicle.Velocity.Y)))

	actualSpeed := vehicle.Speed

	if speedMag > actualSpeed {
		actualSpeed = speedMag
	}

	// shortest arc difference between the reported angle and the view's
	// straight ahead heading, 0-180
	angleFromCenter := angle - view.referenceHeading()

	if angleFromCenter < 0 {
		angleFromCenter = -angleFromCenter
	}

	if angleFromCenter > 180.0 {
		angleFromCenter = 360.0 - angleFromCenter
	}

	// the vehicle is closing when its velocity points against the
	// vector from the frame center to its position
	dx := vehicle.Position.X - s.centerX
	dy := vehicle.Position.Y - s.centerY
	closing := vehicle.Velocity.X*dx+vehicle.Velocity.Y*dy < 0

	ttc := math.Inf(1)

	if actualSpeed > s.thresh.MinSpeed && closing {
		// convert pixel speed to approximate m/s
		speedMS := actualSpeed * s.thresh.SpeedScale

		if speedMS > 0 {
			ttc = float64(distance / speedMS)
		}
	}

	// a vehicle below the low speed tier is never a collision candidate,
	// a stationary vehicle close by raises no alert
	if actualSpeed < s.thresh.LowSpeed {
		return false, ttc, None
	}

	distanceScore := s.scoreDistance(distance)
	speedScore := s.scoreSpeed(actualSpeed)
	angleScore := s.scoreAngle(angleFromCenter)

	// distance is weighted most, then speed, then angle
	combinedScore := distanceScore*0.4 + speedScore*0.35 + angleScore*0.25

	severity := None

	switch {
	case distance <= s.thresh.CriticalDistance &&
		actualSpeed >= s.thresh.LowSpeed &&
		angleFromCenter <= s.thresh.CriticalAngle:
		severity = Critical

	case distance <= s.thresh.HighDistance &&
		actualSpeed >= s.thresh.MediumSpeed &&
		angleFromCenter <= s.thresh.HighAngle:
		severity = High

	case distance <= s.thresh.MediumDistance &&
		actualSpeed >= s.thresh.LowSpeed &&
		angleFromCenter <= s.thresh.MediumAngle:
		severity = Medium

	case distance <= s.thresh.LowDistance &&
		actualSpeed >= s.thresh.LowSpeed &&
		angleFromCenter <= s.thresh.LowAngle:
		severity = Low
	}

	// the combined score can outrank a lower tier match, taking the
	// higher of the two keeps severity monotone in each risk axis
	scoreSeverity := None

	switch {
	case combinedScore >= 0.7:
		scoreSeverity = High

	case combinedScore >= 0.5:
		scoreSeverity = Medium

	case combinedScore >= 0.3:
		scoreSeverity = Low
	}

	if scoreSeverity > severity {
		severity = scoreSeverity
	}

	severity = s.escalate(severity, distance, actualSpeed, angleFromCenter)

	return severity != None, ttc, severity
}

// escalate applies the two severity escalation overrides.  A very close
// vehicle is flagged regardless of other factors, and a very fast
// vehicle approaching on path is always critical.  The mapping is
// idempotent, escalating an already escalated severity changes nothing.
func (s *Scorer) escalate(severity Severity, distance, speed,
	angleFromCenter float32) Severity {

	if distance <= s.thresh.CriticalDistance/2 {
		switch severity {
		case None, Low:
			severity = High
		case Medium:
			severity = Critical
		}
	}

	if speed >= s.thresh.CriticalSpeed &&
		distance <= s.thresh.HighDistance &&
		angleFromCenter <= s.thresh.HighAngle {
		severity = Critical
	}

	return severity
}

// Analyze performs the complete risk analysis of a tracked vehicle,
// combining distance, angle and collision prediction
func (s *Scorer) Analyze(vehicle tracker.TrackedVehicle, view View) VehicleInfo {

	distance := s.Distance(vehicle.Rect, view)
	angle := s.Angle(vehicle.Rect, view)

	collision, ttc, severity := s.Predict(vehicle, distance, angle, view)

	return VehicleInfo{
		TrackedVehicle: vehicle,
		View:           view,
		Distance:       distance,
		Angle:          angle,
		Collision:      collision,
		Severity:       severity,
		TTC:            ttc,
	}
}

// scoreDistance maps a distance to a 0-1 risk score, closer is riskier
func (s *Scorer) scoreDistance(distance float32) float32 {

	switch {
	case distance <= s.thresh.CriticalDistance:
		return 1.0
	case distance <= s.thresh.HighDistance:
		return 0.8
	case distance <= s.thresh.MediumDistance:
		return 0.6
	case distance <= s.thresh.LowDistance:
		return 0.4
	}

	// decay from the lowest tier score down to zero so the score stays
	// monotone across the tier boundary
	score := 0.4 * (1.0 - (distance-s.thresh.LowDistance)/50.0)

	if score < 0 {
		score = 0
	}

	return score
}

// scoreSpeed maps a speed to a 0-1 risk score, faster is riskier
func (s *Scorer) scoreSpeed(speed float32) float32 {

	switch {
	case speed >= s.thresh.CriticalSpeed:
		return 1.0
	case speed >= s.thresh.HighSpeed:
		return 0.8
	case speed >= s.thresh.MediumSpeed:
		return 0.6
	case speed >= s.thresh.LowSpeed:
		return 0.4
	}

	return speed / s.thresh.LowSpeed * 0.4
}

// scoreAngle maps an angle from center to a 0-1 risk score, directly
// ahead is riskiest
func (s *Scorer) scoreAngle(angleFromCenter float32) float32 {

	switch {
	case angleFromCenter <= s.thresh.CriticalAngle:
		return 1.0
	case angleFromCenter <= s.thresh.HighAngle:
		return 0.8
	case angleFromCenter <= s.thresh.MediumAngle:
		return 0.6
	case angleFromCenter <= s.thresh.LowAngle:
		return 0.4
	}

	score := 0.4 * (1.0 - (angleFromCenter-s.thresh.LowAngle)/60.0)

	if score < 0 {
		score = 0
	}

	return score
}

// normalizeAngle wraps an angle in degrees into the 0-360 range
func normalizeAngle(angle float32) float32 {

	angle = float32(math.Mod(float64(angle), 360.0))

	if angle < 0 {
		angle += 360.0
	}

	return angle
}
