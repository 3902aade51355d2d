package risk

// Calibration holds the camera calibration constants used for distance
// estimation
type Calibration struct {
	// FocalLength is the camera focal length in pixels
	FocalLength float32
	// RealVehicleWidth is the average vehicle width in meters
	RealVehicleWidth float32
	// PixelsPerMeter is the pixel to meter calibration factor
	PixelsPerMeter float32
	// DefaultDistance is the fallback distance in meters used when the
	// bounding box height is degenerate
	DefaultDistance float32
	// MinDistance and MaxDistance clamp the distance estimate to a
	// plausible range in meters
	MinDistance float32
	MaxDistance float32
}

// DefaultCalibration returns calibration constants for a typical dash
// camera setup
func DefaultCalibration() Calibration {
	return Calibration{
		FocalLength:      700.0,
		RealVehicleWidth: 1.8,
		PixelsPerMeter:   50.0,
		DefaultDistance:  100.0,
		MinDistance:      1.0,
		MaxDistance:      200.0,
	}
}

// Thresholds holds the four tier alert thresholds for each of the
// distance, speed and angle risk axes.  Each axis has ascending tiers
// ranked critical, high, medium, low by risk.
type Thresholds struct {
	// Distance thresholds in meters, a vehicle within the distance is
	// at least that risky
	CriticalDistance float32
	HighDistance     float32
	MediumDistance   float32
	LowDistance      float32

	// Speed thresholds in pixels, a vehicle at or above the speed is at
	// least that risky
	CriticalSpeed float32
	HighSpeed     float32
	MediumSpeed   float32
	LowSpeed      float32

	// Angle thresholds in degrees from the view heading, a vehicle
	// within the angle is at least that risky
	CriticalAngle float32
	HighAngle     float32
	MediumAngle   float32
	LowAngle      float32

	// MinSpeed is the minimum speed a vehicle must move at before a
	// time to collision is estimated
	MinSpeed float32
	// SpeedScale converts pixel speed to an approximate meters per
	// second for the time to collision estimate
	SpeedScale float32
}

// DefaultThresholds returns the default alert thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalDistance: 5.0,
		HighDistance:     10.0,
		MediumDistance:   20.0,
		LowDistance:      30.0,

		CriticalSpeed: 20.0,
		HighSpeed:     15.0,
		MediumSpeed:   10.0,
		LowSpeed:      5.0,

		CriticalAngle: 15.0,
		HighAngle:     30.0,
		MediumAngle:   45.0,
		LowAngle:      60.0,

		MinSpeed:   5.0,
		SpeedScale: 0.1,
	}
}
