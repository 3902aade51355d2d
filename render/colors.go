package render

import (
	"image/color"

	"github.com/roadwatch/go-roadwatch/risk"
)

var (
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Orange = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Amber  = color.RGBA{R: 255, G: 100, B: 0, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}

	// trackColors is a list of distinct colors used to paint per track
	// overlays so neighbouring vehicles are distinguishable
	trackColors = []color.RGBA{
		{R: 255, G: 56, B: 56, A: 255},   // #FF3838
		{R: 255, G: 112, B: 31, A: 255},  // #FF701F
		{R: 255, G: 178, B: 29, A: 255},  // #FFB21D
		{R: 207, G: 210, B: 49, A: 255},  // #CFD231
		{R: 72, G: 249, B: 10, A: 255},   // #48F90A
		{R: 26, G: 147, B: 52, A: 255},   // #1A9334
		{R: 0, G: 212, B: 187, A: 255},   // #00D4BB
		{R: 0, G: 194, B: 255, A: 255},   // #00C2FF
		{R: 52, G: 69, B: 147, A: 255},   // #344593
		{R: 100, G: 115, B: 255, A: 255}, // #6473FF
		{R: 0, G: 24, B: 236, A: 255},    // #0018EC
		{R: 132, G: 56, B: 255, A: 255},  // #8438FF
		{R: 82, G: 0, B: 133, A: 255},    // #520085
		{R: 255, G: 149, B: 200, A: 255}, // #FF95C8
		{R: 255, G: 55, B: 199, A: 255},  // #FF37C7
		{R: 44, G: 153, B: 168, A: 255},  // #2C99A8
		{R: 61, G: 219, B: 134, A: 255},  // #3DDB86
		{R: 146, G: 204, B: 23, A: 255},  // #92CC17
	}
)

// TrackColor returns the overlay color for a track ID
func TrackColor(id int) color.RGBA {
	return trackColors[id%len(trackColors)]
}

// SeverityColor returns the alert color for a severity level
func SeverityColor(severity risk.Severity) color.RGBA {
	switch severity {
	case risk.Critical:
		return Red
	case risk.High:
		return Amber
	case risk.Medium:
		return Orange
	default:
		return Yellow
	}
}

// severityThickness returns the alert border thickness for a severity
// level
func severityThickness(severity risk.Severity) int {
	switch severity {
	case risk.Critical:
		return 10
	case risk.High:
		return 8
	case risk.Medium:
		return 5
	default:
		return 3
	}
}
