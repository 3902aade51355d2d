package roadwatch

import (
	"fmt"

	"github.com/roadwatch/go-roadwatch/alert"
	"github.com/roadwatch/go-roadwatch/risk"
	"github.com/roadwatch/go-roadwatch/tracker"
)

// viewOrder is the fixed processing order for camera views so multi
// view results are deterministic
var viewOrder = []risk.View{risk.Front, risk.Back, risk.Left, risk.Right}

// MultiView runs one Pipeline per camera view and reduces all views'
// scored vehicles through a single alert evaluation per tick
type MultiView struct {
	pipelines  map[risk.View]*Pipeline
	aggregator *alert.Aggregator
}

// NewMultiView returns a MultiView with a Pipeline for each of the
// given views, all sharing the same frame dimensions and configuration
func NewMultiView(views []risk.View, frameWidth, frameHeight int,
	cfg Config) *MultiView {

	m := &MultiView{
		pipelines:  make(map[risk.View]*Pipeline),
		aggregator: alert.NewAggregator(cfg.Thresholds),
	}

	for _, view := range views {
		m.pipelines[view] = NewPipeline(view, frameWidth, frameHeight, cfg)
	}

	return m
}

// Pipeline returns the pipeline for the given view, or nil if the view
// was not configured
func (m *MultiView) Pipeline(view risk.View) *Pipeline {
	return m.pipelines[view]
}

// Process runs one tick over the per view detection sets and evaluates
// a single alert decision across all views.  Views without an entry in
// the map still tick with no detections so their tracks age normally.
func (m *MultiView) Process(detections map[risk.View][]tracker.Detection) (
	[]risk.VehicleInfo, alert.Result, error) {

	var all []risk.VehicleInfo

	for _, view := range viewOrder {

		pipeline, ok := m.pipelines[view]

		if !ok {
			continue
		}

		infos, _, err := pipeline.Process(detections[view])

		if err != nil {
			return nil, alert.Result{Severity: risk.None},
				fmt.Errorf("error processing %s view: %w", view, err)
		}

		all = append(all, infos...)
	}

	return all, m.aggregator.Evaluate(all), nil
}
