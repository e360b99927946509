//go:build cgo

package robot

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/mj1618/rotator/internal/platform"
)

// RobotScreenshotter implements platform.Screenshotter with robotgo.
type RobotScreenshotter struct{}

// NewScreenshotter creates a new robotgo-backed screenshotter.
func NewScreenshotter() *RobotScreenshotter {
	return &RobotScreenshotter{}
}

// CaptureRegion captures the given screen rectangle. The returned image may be
// smaller or larger than requested when the OS applies display scaling.
func (s *RobotScreenshotter) CaptureRegion(b platform.Bounds) (image.Image, error) {
	if b.Empty() {
		return nil, fmt.Errorf("empty capture region %s", b)
	}
	bit := robotgo.CaptureScreen(b.X, b.Y, b.Width, b.Height)
	if bit == nil {
		return nil, fmt.Errorf("screen capture failed for region %s", b)
	}
	defer robotgo.FreeBitmap(bit)

	img := robotgo.ToImage(bit)
	if img == nil {
		return nil, fmt.Errorf("screen capture returned no image for region %s", b)
	}
	return img, nil
}
