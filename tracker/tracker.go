package tracker

import (
	"fmt"
	"time"
)

// Params holds the tracker configuration values
type Params struct {
	// GateDistance is the maximum center distance in pixels for matching
	// a detection to a track prediction
	GateDistance float32
	// MaxDisappeared is the number of consecutive unmatched frames after
	// which a track is evicted
	MaxDisappeared int
	// PositionHistorySize is the maximum number of center points kept in
	// the track trajectory
	PositionHistorySize int
	// SpeedHistorySize is the maximum number of speed samples kept for
	// the mean speed calculation
	SpeedHistorySize int
	// ProcessNoise is the Kalman filter process noise variance
	ProcessNoise float32
	// MeasurementNoise is the Kalman filter measurement noise variance
	MeasurementNoise float32
}

// DefaultParams returns the default tracker configuration
func DefaultParams() Params {
	return Params{
		GateDistance:        100.0,
		MaxDisappeared:      30,
		PositionHistorySize: 30,
		SpeedHistorySize:    10,
		ProcessNoise:        0.03,
		MeasurementNoise:    5.0,
	}
}

// Tracker preserves vehicle identity across frames given per frame
// bounding box detections.  It is not safe for concurrent use, callers
// running capture on another goroutine must serialize access.
type Tracker struct {
	params Params
	// counter for assigning unique track IDs
	idCount int
	// live tracks ordered by ascending track ID so association scans
	// and snapshots are deterministic
	tracks []*Track
	// now returns the current wall time for speed calculations
	now func() time.Time
}

// NewTracker initializes and returns a new Tracker
func NewTracker(params Params) *Tracker {
	return &Tracker{
		params: params,
		tracks: make([]*Track, 0),
		now:    time.Now,
	}
}

// Reset clears the tracked data and resets everything
func (t *Tracker) Reset() {
	t.idCount = 0
	t.tracks = make([]*Track, 0)
}

// Count returns the number of live tracks, including those missed this
// frame but not yet evicted
func (t *Tracker) Count() int {
	return len(t.tracks)
}

// Update runs one tracking tick over the given detections.  Every live
// track's estimate is advanced one frame, detections are greedily
// matched to predictions by smallest center distance within the gate,
// matched tracks are corrected, unmatched detections spawn new tracks
// and unmatched tracks age toward eviction.  An empty detection list
// only ages and evicts existing tracks.
func (t *Tracker) Update(detections []Detection) error {

	now := t.now()

	// with no detections all tracks go unmatched
	if len(detections) == 0 {
		t.ageTracks(nil)
		return nil
	}

	// advance every track's state estimate one frame
	for _, track := range t.tracks {
		track.predict()
	}

	matchedDet, matchedTrk := t.associate(detections)

	// correct matched tracks with their observed centers
	for di, ti := range matchedDet {
		if ti < 0 {
			continue
		}

		err := t.tracks[ti].correct(detections[di], now, t.params)

		if err != nil {
			return fmt.Errorf("error correcting track %d: %w",
				t.tracks[ti].id, err)
		}
	}

	// age unmatched tracks before spawning so the matched flags still
	// line up with the track slice
	t.ageTracks(matchedTrk)

	// spawn new tracks for unmatched detections
	for di, ti := range matchedDet {
		if ti >= 0 {
			continue
		}

		t.idCount++
		t.tracks = append(t.tracks, newTrack(t.idCount, detections[di],
			now, t.params))
	}

	return nil
}

// associate greedily matches detections to track predictions.  It
// repeatedly selects the globally smallest remaining center distance,
// accepts it only when below the gate, and removes both sides from
// further consideration.  Ties resolve to the first entry found scanning
// detections then tracks in order.  It returns the matched track index
// per detection (-1 for unmatched) and the matched flag per track.
func (t *Tracker) associate(detections []Detection) ([]int, []bool) {

	matchedDet := make([]int, len(detections))

	for i := range matchedDet {
		matchedDet[i] = -1
	}

	matchedTrk := make([]bool, len(t.tracks))

	if len(t.tracks) == 0 {
		return matchedDet, matchedTrk
	}

	// build the matrix of center distances between each detection and
	// each track's predicted position
	cost := make([][]float32, len(detections))

	for di, det := range detections {
		cost[di] = make([]float32, len(t.tracks))
		cx, cy := det.Rect.Center()

		for ti, track := range t.tracks {
			pred := track.predictedPosition()
			cost[di][ti] = hypot(cx-pred.X, cy-pred.Y)
		}
	}

	usedDet := make([]bool, len(detections))

	for {
		minCost := t.params.GateDistance
		minDet := -1
		minTrk := -1

		for di := range detections {
			if usedDet[di] {
				continue
			}

			for ti := range t.tracks {
				if matchedTrk[ti] {
					continue
				}

				if cost[di][ti] < minCost {
					minCost = cost[di][ti]
					minDet = di
					minTrk = ti
				}
			}
		}

		// no remaining pair is below the gate
		if minDet == -1 {
			break
		}

		matchedDet[minDet] = minTrk
		matchedTrk[minTrk] = true
		usedDet[minDet] = true
	}

	return matchedDet, matchedTrk
}

// ageTracks increments the disappearance counter of every unmatched
// track and evicts those past the maximum.  A nil matched slice ages
// every track.
func (t *Tracker) ageTracks(matchedTrk []bool) {

	kept := t.tracks[:0]

	for ti, track := range t.tracks {

		if matchedTrk != nil && ti < len(matchedTrk) && matchedTrk[ti] {
			kept = append(kept, track)
			continue
		}

		track.disappeared++

		if track.disappeared > t.params.MaxDisappeared {
			// evicted, all per track state is dropped with it
			continue
		}

		kept = append(kept, track)
	}

	// release evicted track pointers
	for i := len(kept); i < len(t.tracks); i++ {
		t.tracks[i] = nil
	}

	t.tracks = kept
}

// Vehicles returns a snapshot for every track matched this frame.
// Tracks missed this frame but not yet evicted are withheld from the
// output though retained internally.
func (t *Tracker) Vehicles() []TrackedVehicle {

	vehicles := make([]TrackedVehicle, 0, len(t.tracks))

	for _, track := range t.tracks {
		if track.disappeared > 0 {
			continue
		}

		vehicles = append(vehicles, track.snapshot())
	}

	return vehicles
}
