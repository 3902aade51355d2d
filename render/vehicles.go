// Package render draws tracked vehicle and alert overlays on video
// frames.  It consumes the read-only outputs of the tracking and risk
// packages and holds no tracking state of its own.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/roadwatch/go-roadwatch/risk"
)

// boxLabel holds the precalculated details for rendering a text label
// on a box
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// VehicleBoxes renders the bounding boxes around the tracked vehicles
// with a label showing the track ID, distance and bearing angle
func VehicleBoxes(img *gocv.Mat, vehicles []risk.VehicleInfo, font Font,
	lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, vehicle := range vehicles {

		useClr := TrackColor(vehicle.ID)

		if vehicle.Collision {
			useClr = SeverityColor(vehicle.Severity)
		}

		// draw rectangle around the vehicle
		rect := image.Rect(int(vehicle.Rect.X), int(vehicle.Rect.Y),
			int(vehicle.Rect.X+vehicle.Rect.W),
			int(vehicle.Rect.Y+vehicle.Rect.H))
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("ID:%d D:%.1fm A:%.1f", vehicle.ID,
			vehicle.Distance, vehicle.Angle)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale,
			font.Thickness)

		labelPosition := image.Pt(rect.Min.X+font.Pad,
			rect.Min.Y-font.Pad)

		// create box for placing text on
		bRect := image.Rect(rect.Min.X,
			rect.Min.Y-textSize.Y-2*font.Pad,
			rect.Min.X+textSize.X+2*font.Pad, rect.Min.Y)

		boxLabels = append(boxLabels, boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		})
	}

	// draw all precalculated box labels so they are the top most layer
	// on the image
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}

// Trails draws the position history of each tracked vehicle as a
// polyline ending in a circle on the current center point
func Trails(img *gocv.Mat, vehicles []risk.VehicleInfo, lineThickness int) {

	for _, vehicle := range vehicles {

		clr := TrackColor(vehicle.ID)
		points := vehicle.Trajectory

		if len(points) < 2 {
			continue
		}

		for i := 1; i < len(points); i++ {
			gocv.Line(img,
				image.Pt(int(points[i-1].X), int(points[i-1].Y)),
				image.Pt(int(points[i].X), int(points[i].Y)),
				clr, lineThickness,
			)
		}

		// circle on the current center point
		last := points[len(points)-1]
		gocv.Circle(img, image.Pt(int(last.X), int(last.Y)), 3, clr, -1)
	}
}
