package roadwatch

import (
	"fmt"

	"github.com/roadwatch/go-roadwatch/alert"
	"github.com/roadwatch/go-roadwatch/risk"
	"github.com/roadwatch/go-roadwatch/tracker"
)

// Config holds the static configuration for a processing pipeline
type Config struct {
	// Tracker holds the tracker configuration
	Tracker tracker.Params
	// Calibration holds the camera calibration constants
	Calibration risk.Calibration
	// Thresholds holds the alert thresholds
	Thresholds risk.Thresholds
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Tracker:     tracker.DefaultParams(),
		Calibration: risk.DefaultCalibration(),
		Thresholds:  risk.DefaultThresholds(),
	}
}

// Pipeline runs the per frame tracking and collision risk analysis for
// a single camera view.  Processing is synchronous and deterministic
// for a given detection set and prior state.  A Pipeline is not safe
// for concurrent use, independent views each use their own Pipeline
// instance and share no state.
type Pipeline struct {
	view       risk.View
	tracker    *tracker.Tracker
	scorer     *risk.Scorer
	aggregator *alert.Aggregator
}

// NewPipeline returns a Pipeline for the given camera view and frame
// dimensions
func NewPipeline(view risk.View, frameWidth, frameHeight int,
	cfg Config) *Pipeline {

	return &Pipeline{
		view:       view,
		tracker:    tracker.NewTracker(cfg.Tracker),
		scorer:     risk.NewScorer(frameWidth, frameHeight, cfg.Calibration, cfg.Thresholds),
		aggregator: alert.NewAggregator(cfg.Thresholds),
	}
}

// View returns the camera view the pipeline processes
func (p *Pipeline) View() risk.View {
	return p.view
}

// Tracker returns the pipeline's tracker
func (p *Pipeline) Tracker() *tracker.Tracker {
	return p.tracker
}

// Process runs one tick over the given detections.  It updates the
// tracker, scores every currently visible vehicle and reduces the
// scored vehicles into an alert decision.  Detections are expected to
// be validated by the caller.
func (p *Pipeline) Process(detections []tracker.Detection) ([]risk.VehicleInfo,
	alert.Result, error) {

	err := p.tracker.Update(detections)

	if err != nil {
		return nil, alert.Result{Severity: risk.None},
			fmt.Errorf("error updating tracker: %w", err)
	}

	vehicles := p.tracker.Vehicles()

	infos := make([]risk.VehicleInfo, 0, len(vehicles))

	for _, vehicle := range vehicles {
		infos = append(infos, p.scorer.Analyze(vehicle, p.view))
	}

	return infos, p.aggregator.Evaluate(infos), nil
}
