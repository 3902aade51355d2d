package risk

// View represents the camera mounting orientation a frame was captured
// from.  Raw bearing angles are remapped per view so every view shares
// a common frame where 0 degrees points straight ahead.
type View int

const (
	// Camera facing the direction of travel
	Front View = 0
	// Camera facing behind the vehicle
	Back View = 1
	// Camera facing the left side
	Left View = 2
	// Camera facing the right side
	Right View = 3
)

// String returns the name of the view
func (v View) String() string {
	switch v {
	case Front:
		return "front"
	case Back:
		return "back"
	case Left:
		return "left"
	case Right:
		return "right"
	}

	return "unknown"
}

// referenceHeading returns the angle in degrees that means straight
// ahead for the view, 0 for front/back and 90 for left/right
func (v View) referenceHeading() float32 {
	if v == Left || v == Right {
		return 90.0
	}

	return 0.0
}
