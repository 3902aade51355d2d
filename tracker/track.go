package tracker

import (
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Point represents the x,y coordinates of a tracked vehicle's center point
type Point struct {
	X, Y float32
}

// Track represents a single tracked vehicle and owns all of its mutable
// state, the Kalman filter estimate, disappearance counter, bounded
// position and speed histories, and the last observed bounding box
type Track struct {
	// unique ID for the track, never reused
	id int
	// Kalman filter used for tracking
	kalmanFilter *KalmanFilter
	// Mean state vector [cx, cy, vx, vy]
	mean StateMean
	// Covariance matrix
	covariance StateCov
	// number of consecutive frames the track went unmatched
	disappeared int
	// history of observed center points, oldest first
	positions []Point
	// history of instantaneous speeds in pixels per second
	speeds []float32
	// last observed bounding box
	rect Rect
	// time the track was created
	createdAt time.Time
	// time of the last matched detection
	updatedAt time.Time
}

// newTrack creates a new Track from an unmatched detection.  The state
// is initialized to the detection's center with zero velocity.
func newTrack(id int, det Detection, now time.Time, p Params) *Track {

	t := &Track{
		id:           id,
		kalmanFilter: NewKalmanFilter(p.ProcessNoise, p.MeasurementNoise),
		mean:         make(StateMean, 4),
		covariance:   StateCov{mat.NewDense(4, 4, nil)},
		positions:    make([]Point, 0, p.PositionHistorySize),
		speeds:       make([]float32, 0, p.SpeedHistorySize),
		rect:         det.Rect,
		createdAt:    now,
		updatedAt:    now,
	}

	cx, cy := det.Rect.Center()
	t.kalmanFilter.Initiate(t.mean, &t.covariance, Measurement{cx, cy})

	t.positions = append(t.positions, Point{X: cx, Y: cy})
	t.speeds = append(t.speeds, 0.0)

	return t
}

// GetID returns the unique ID for the track
func (t *Track) GetID() int {
	return t.id
}

// GetDisappeared returns the number of consecutive frames the track has
// gone unmatched
func (t *Track) GetDisappeared() int {
	return t.disappeared
}

// GetRect returns the last observed bounding box
func (t *Track) GetRect() *Rect {
	return &t.rect
}

// predict advances the track's state estimate by one frame
func (t *Track) predict() {
	t.kalmanFilter.Predict(t.mean, &t.covariance)
}

// predictedPosition returns the center point of the state estimate
func (t *Track) predictedPosition() Point {
	return Point{X: t.mean[0], Y: t.mean[1]}
}

// correct feeds a matched detection into the track.  The state estimate
// is corrected with the observed center, the disappearance counter is
// reset, and the position and speed histories are updated.  The speed
// sample is skipped when no wall time has elapsed since the last match.
func (t *Track) correct(det Detection, now time.Time, p Params) error {

	cx, cy := det.Rect.Center()

	err := t.kalmanFilter.Update(t.mean, &t.covariance, Measurement{cx, cy})

	if err != nil {
		return err
	}

	// instantaneous speed is displacement over elapsed wall time since
	// the last matched detection
	if len(t.positions) > 0 {
		dt := float32(now.Sub(t.updatedAt).Seconds())

		if dt > 0 {
			prev := t.positions[len(t.positions)-1]
			dx := cx - prev.X
			dy := cy - prev.Y
			speed := float32(hypot(dx, dy)) / dt

			t.speeds = append(t.speeds, speed)

			if len(t.speeds) > p.SpeedHistorySize {
				t.speeds = t.speeds[1:]
			}
		}
	}

	t.positions = append(t.positions, Point{X: cx, Y: cy})

	if len(t.positions) > p.PositionHistorySize {
		t.positions = t.positions[1:]
	}

	t.disappeared = 0
	t.rect = det.Rect
	t.updatedAt = now

	return nil
}

// snapshot returns the read-only TrackedVehicle view of the track
func (t *Track) snapshot() TrackedVehicle {

	trajectory := make([]Point, len(t.positions))
	copy(trajectory, t.positions)

	return TrackedVehicle{
		ID:         t.id,
		Position:   Point{X: t.mean[0], Y: t.mean[1]},
		Velocity:   Point{X: t.mean[2], Y: t.mean[3]},
		Speed:      t.meanSpeed(),
		Trajectory: trajectory,
		Rect:       t.rect,
	}
}

// meanSpeed returns the arithmetic mean of the speed history, or 0 if
// no speed samples exist yet
func (t *Track) meanSpeed() float32 {

	if len(t.speeds) == 0 {
		return 0.0
	}

	samples := make([]float64, len(t.speeds))

	for i, s := range t.speeds {
		samples[i] = float64(s)
	}

	return float32(stat.Mean(samples, nil))
}

// TrackedVehicle is the read-only per-frame snapshot of a track used by
// the collision scorer
type TrackedVehicle struct {
	// ID is the unique track ID
	ID int
	// Position is the estimated center point of the vehicle
	Position Point
	// Velocity is the estimated velocity in pixels per frame
	Velocity Point
	// Speed is the mean of the track's speed history in pixels per second
	Speed float32
	// Trajectory is a copy of the track's position history, oldest first
	Trajectory []Point
	// Rect is the last observed bounding box
	Rect Rect
}
