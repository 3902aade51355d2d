package tracker

import (
	"math"
)

// Rect represents a bounding box in top-left x,y plus width and height
// format, in pixels
type Rect struct {
	X, Y, W, H float32
}

// NewRect creates a new Rect with given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, W: width, H: height}
}

// Center returns the center point of the rectangle
func (r *Rect) Center() (float32, float32) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Valid reports whether the rectangle is a usable bounding box.  Callers
// are expected to filter invalid boxes before passing them to the tracker.
func (r *Rect) Valid() bool {
	return r.W > 0 && r.H > 0 && r.X >= 0 && r.Y >= 0
}

// Detection represents a single vehicle detection from the object
// detector for one frame
type Detection struct {
	// Rect is the bounding box of the detected vehicle
	Rect Rect
	// Label is the class label of the vehicle detected
	Label int
	// Prob is the confidence/probability of the vehicle detected
	Prob float32
}

// NewDetection is a constructor function for the Detection struct
func NewDetection(rect Rect, label int, prob float32) Detection {
	return Detection{
		Rect:  rect,
		Label: label,
		Prob:  prob,
	}
}

// hypot returns the Euclidean norm of the given x,y displacement
func hypot(dx, dy float32) float32 {
	return float32(math.Hypot(float64(dx), float64(dy)))
}
