package render

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/roadwatch/go-roadwatch/alert"
	"github.com/roadwatch/go-roadwatch/risk"
)

// maxMessages is the maximum number of alert messages drawn on a frame
const maxMessages = 3

// AlertOverlay draws the frame level alert border and messages plus a
// warning marker on every flagged vehicle
func AlertOverlay(img *gocv.Mat, vehicles []risk.VehicleInfo,
	result alert.Result, font Font) {

	if result.Flagged {

		clr := SeverityColor(result.Severity)
		thickness := severityThickness(result.Severity)

		// draw alert border around the frame
		gocv.Rectangle(img, image.Rect(0, 0, img.Cols()-1, img.Rows()-1),
			clr, thickness)

		// draw alert messages top left
		yOffset := 30

		for i, msg := range result.Messages {
			if i >= maxMessages {
				break
			}

			gocv.PutTextWithParams(img, msg,
				image.Pt(10, yOffset+i*25), font.Face, 0.6, clr, 2,
				font.LineType, false)
		}
	}

	for _, vehicle := range vehicles {
		if vehicle.Collision {
			vehicleAlert(img, vehicle)
		}
	}
}

// vehicleAlert draws a warning ring with radial spokes around a flagged
// vehicle's center point
func vehicleAlert(img *gocv.Mat, vehicle risk.VehicleInfo) {

	clr := SeverityColor(vehicle.Severity)

	x := int(vehicle.Position.X)
	y := int(vehicle.Position.Y)
	radius := 30

	// warning circle around the vehicle center
	gocv.Circle(img, image.Pt(x, y), radius, clr, 3)

	// radial warning spokes
	for i := 0; i < 8; i++ {
		angle := float64(i) * 45.0 * math.Pi / 180.0

		x1 := x + int(float64(radius)*math.Cos(angle))
		y1 := y + int(float64(radius)*math.Sin(angle))
		x2 := x + int(float64(radius+10)*math.Cos(angle))
		y2 := y + int(float64(radius+10)*math.Sin(angle))

		gocv.Line(img, image.Pt(x1, y1), image.Pt(x2, y2), clr, 2)
	}
}
