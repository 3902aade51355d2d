// Package source provides frame acquisition from image files, video
// files and live cameras, plus the object detector producing the
// bounding box detections consumed by the tracking core.
package source

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Kind represents the type of input a FrameSource reads from
type Kind int

const (
	// Single image file
	Image Kind = 0
	// Video file
	Video Kind = 1
	// Live camera feed
	Live Kind = 2
)

// String returns the name of the input kind
func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	case Live:
		return "live"
	}

	return "unknown"
}

// imageExts are the file extensions treated as still images
var imageExts = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".webp"}

// FrameSource reads frames from an image file, a video file or a live
// camera feed behind a single interface
type FrameSource struct {
	kind Kind
	// capture device for video and live inputs
	cap *gocv.VideoCapture
	// decoded image for still image inputs
	image gocv.Mat
	// number of frames read so far
	frameCount int
	// total number of frames, -1 when unknown (live feeds)
	totalFrames int
	fps         float64
	width       int
	height      int
}

// New opens a frame source for the given input.  A numeric input is
// treated as a camera index, a file with an image extension as a still
// image and anything else as a video file.
func New(input string) (*FrameSource, error) {

	if idx, err := strconv.Atoi(input); err == nil {
		return newLive(idx)
	}

	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("input file not found: %s", input)
	}

	ext := strings.ToLower(filepath.Ext(input))

	for _, imgExt := range imageExts {
		if ext == imgExt {
			return newImage(input)
		}
	}

	return newVideo(input)
}

// newImage opens a still image input
func newImage(file string) (*FrameSource, error) {

	img := gocv.IMRead(file, gocv.IMReadColor)

	if img.Empty() {
		return nil, fmt.Errorf("could not read image: %s", file)
	}

	log.Printf("Loaded image: %s, size %dx%d", file, img.Cols(), img.Rows())

	return &FrameSource{
		kind:        Image,
		image:       img,
		totalFrames: 1,
		fps:         30.0,
		width:       img.Cols(),
		height:      img.Rows(),
	}, nil
}

// newVideo opens a video file input
func newVideo(file string) (*FrameSource, error) {

	cap, err := gocv.VideoCaptureFile(file)

	if err != nil {
		return nil, fmt.Errorf("could not open video file %s: %w", file, err)
	}

	fps := cap.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		fps = 30.0
	}

	s := &FrameSource{
		kind:        Video,
		cap:         cap,
		totalFrames: int(cap.Get(gocv.VideoCaptureFrameCount)),
		fps:         fps,
		width:       int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height:      int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}

	log.Printf("Loaded video: %s, size %dx%d, FPS %.2f, frames %d",
		file, s.width, s.height, s.fps, s.totalFrames)

	return s, nil
}

// newLive opens a live camera feed
func newLive(device int) (*FrameSource, error) {

	cap, err := gocv.VideoCaptureDevice(device)

	if err != nil {
		return nil, fmt.Errorf("could not open camera %d: %w", device, err)
	}

	// request a 1280x720 capture size
	cap.Set(gocv.VideoCaptureFrameWidth, 1280)
	cap.Set(gocv.VideoCaptureFrameHeight, 720)

	fps := cap.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		fps = 30.0
	}

	s := &FrameSource{
		kind:        Live,
		cap:         cap,
		totalFrames: -1,
		fps:         fps,
		width:       int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height:      int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}

	log.Printf("Initialized live camera %d, size %dx%d", device,
		s.width, s.height)

	return s, nil
}

// Kind returns the input kind of the source
func (s *FrameSource) Kind() Kind {
	return s.kind
}

// Size returns the frame dimensions in pixels
func (s *FrameSource) Size() (int, int) {
	return s.width, s.height
}

// FPS returns the frame rate of the source
func (s *FrameSource) FPS() float64 {
	return s.fps
}

// TotalFrames returns the total number of frames, or -1 when unknown
func (s *FrameSource) TotalFrames() int {
	return s.totalFrames
}

// Read reads the next frame into dst and reports whether a frame was
// available.  A still image source yields its image exactly once.
func (s *FrameSource) Read(dst *gocv.Mat) bool {

	if s.kind == Image {
		if s.frameCount >= 1 {
			return false
		}

		s.image.CopyTo(dst)
		s.frameCount++
		return true
	}

	if !s.cap.Read(dst) || dst.Empty() {
		return false
	}

	s.frameCount++
	return true
}

// Close releases the capture device or image buffer
func (s *FrameSource) Close() error {

	if s.kind == Image {
		return s.image.Close()
	}

	return s.cap.Close()
}
