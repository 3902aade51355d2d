package source

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/roadwatch/go-roadwatch"
	"github.com/roadwatch/go-roadwatch/tracker"
)

const (
	// default confidence threshold for vehicle detection
	ConfThresh = 0.25
	// default NMS (Non-maximum Suppression) threshold
	NMSThresh = 0.45
	// model input tensor size
	inputSize = 640
	// number of classes the COCO trained model predicts
	classNum = 80
)

// Detector runs a YOLOv8 ONNX model through the OpenCV DNN module and
// returns the vehicle detections found in a frame
type Detector struct {
	net gocv.Net
	// confThresh is the minimum confidence for a detection
	confThresh float32
	// nmsThresh is the IoU threshold used in non-maximum suppression
	nmsThresh float32
}

// NewDetector loads the given ONNX model file and returns a Detector
// using the default confidence and NMS thresholds
func NewDetector(modelFile string) (*Detector, error) {

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("could not load model: %s", modelFile)
	}

	return &Detector{
		net:        net,
		confThresh: ConfThresh,
		nmsThresh:  NMSThresh,
	}, nil
}

// SetThresholds overrides the default confidence and NMS thresholds
func (d *Detector) SetThresholds(confThresh, nmsThresh float32) {
	d.confThresh = confThresh
	d.nmsThresh = nmsThresh
}

// Close releases the DNN network
func (d *Detector) Close() error {
	return d.net.Close()
}

// Detect runs inference on the given frame and returns the vehicle
// detections found.  Detections are filtered to the COCO vehicle
// classes and to valid bounding boxes inside the frame.
func (d *Detector) Detect(frame gocv.Mat) ([]tracker.Detection, error) {

	if frame.Empty() {
		return nil, fmt.Errorf("empty frame")
	}

	// prepare the input tensor, the frame is scaled to the model input
	// size and normalized to 0-1
	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(inputSize, inputSize), gocv.NewScalar(0, 0, 0, 0),
		true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	// YOLOv8 has a single output of shape [1, 4+classNum, anchors]
	output := d.net.Forward("")
	defer output.Close()

	rows := output.Size()[1]
	cols := output.Size()[2]

	if rows != 4+classNum {
		return nil, fmt.Errorf("unexpected model output shape %v",
			output.Size())
	}

	// view the output as a 2D matrix of rows x anchors
	out := output.Reshape(1, rows)
	defer out.Close()

	// scale factors from model input size back to frame size
	scaleX := float32(frame.Cols()) / float32(inputSize)
	scaleY := float32(frame.Rows()) / float32(inputSize)

	var boxes []image.Rectangle
	var scores []float32
	var classes []int

	for i := 0; i < cols; i++ {

		// find the best scoring class for this anchor
		bestScore := float32(0.0)
		bestClass := -1

		for c := 0; c < classNum; c++ {
			score := out.GetFloatAt(4+c, i)

			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}

		if bestScore < d.confThresh || !roadwatch.IsVehicleClass(bestClass) {
			continue
		}

		// box center and size in model input coordinates
		cx := out.GetFloatAt(0, i)
		cy := out.GetFloatAt(1, i)
		w := out.GetFloatAt(2, i)
		h := out.GetFloatAt(3, i)

		x := (cx - w/2) * scaleX
		y := (cy - h/2) * scaleY
		bw := w * scaleX
		bh := h * scaleY

		boxes = append(boxes, image.Rect(int(x), int(y),
			int(x+bw), int(y+bh)))
		scores = append(scores, bestScore)
		classes = append(classes, bestClass)
	}

	if len(boxes) == 0 {
		return nil, nil
	}

	// suppress overlapping boxes
	indices := gocv.NMSBoxes(boxes, scores, d.confThresh, d.nmsThresh)

	detections := make([]tracker.Detection, 0, len(indices))

	for _, idx := range indices {

		box := boxes[idx].Intersect(image.Rect(0, 0, frame.Cols(),
			frame.Rows()))

		rect := tracker.NewRect(float32(box.Min.X), float32(box.Min.Y),
			float32(box.Dx()), float32(box.Dy()))

		// the tracking core requires validated boxes
		if !rect.Valid() {
			continue
		}

		detections = append(detections,
			tracker.NewDetection(rect, classes[idx], scores[idx]))
	}

	return detections, nil
}
