package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"gocv.io/x/gocv"

	"github.com/roadwatch/go-roadwatch"
	"github.com/roadwatch/go-roadwatch/render"
	"github.com/roadwatch/go-roadwatch/risk"
	"github.com/roadwatch/go-roadwatch/source"
)

func main() {

	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	modelFile := flag.String("m", "yolov8n.onnx", "ONNX detection model file")
	input := flag.String("s", "0", "Input source, a video file, image file, or camera index")
	viewName := flag.String("v", "front", "Camera view, front, back, left, or right")
	outFile := flag.String("o", "out.mp4", "Output video file with overlays")

	flag.Parse()

	view, err := parseView(*viewName)

	if err != nil {
		log.Fatalf("Error parsing view: %v", err)
	}

	err = run(*modelFile, *input, *outFile, view)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("done")
}

// parseView maps a view name to its risk.View value
func parseView(name string) (risk.View, error) {

	switch strings.ToLower(name) {
	case "front":
		return risk.Front, nil
	case "back":
		return risk.Back, nil
	case "left":
		return risk.Left, nil
	case "right":
		return risk.Right, nil
	}

	return risk.Front, fmt.Errorf("unknown view %q", name)
}

// run processes the input source frame by frame and writes the overlay
// video to the output file
func run(modelFile, input, outFile string, view risk.View) error {

	src, err := source.New(input)

	if err != nil {
		return fmt.Errorf("error opening input: %w", err)
	}

	defer src.Close()

	detector, err := source.NewDetector(modelFile)

	if err != nil {
		return fmt.Errorf("error loading detector: %w", err)
	}

	defer detector.Close()

	width, height := src.Size()

	pipeline := roadwatch.NewPipeline(view, width, height,
		roadwatch.DefaultConfig())

	writer, err := gocv.VideoWriterFile(outFile, "avc1", src.FPS(),
		width, height, true)

	if err != nil {
		return fmt.Errorf("error opening video writer: %w", err)
	}

	defer writer.Close()

	font := render.DefaultFont()
	frame := gocv.NewMat()
	defer frame.Close()

	frameNum := 0

	for src.Read(&frame) {

		frameNum++

		detections, err := detector.Detect(frame)

		if err != nil {
			return fmt.Errorf("error detecting frame %d: %w", frameNum, err)
		}

		vehicles, result, err := pipeline.Process(detections)

		if err != nil {
			return fmt.Errorf("error processing frame %d: %w", frameNum, err)
		}

		render.Trails(&frame, vehicles, 1)
		render.VehicleBoxes(&frame, vehicles, font, 2)
		render.AlertOverlay(&frame, vehicles, result, font)

		if result.Flagged {
			log.Printf("frame %d [%s] alert", frameNum, result.Severity)

			for _, msg := range result.Messages {
				log.Printf("  %s", msg)
			}
		}

		err = writer.Write(frame)

		if err != nil {
			return fmt.Errorf("error writing frame %d: %w", frameNum, err)
		}
	}

	log.Printf("processed %d frames", frameNum)

	return nil
}
