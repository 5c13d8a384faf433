package inference

import (
	"image"
	"math"
)

// BoundingBox is a face region in normalized coordinates: x, y, width,
// and height as fractions of the frame, origin top-left.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether the box has positive area inside the unit square.
func (b BoundingBox) Valid() bool {
	return b.W > 0 && b.H > 0 &&
		b.X >= 0 && b.Y >= 0 &&
		b.X+b.W <= 1 && b.Y+b.H <= 1
}

// PixelRect maps the normalized box into pixel space, expanded outward
// to an integral rectangle and clamped to the frame bounds.
func (b BoundingBox) PixelRect(bounds image.Rectangle) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	x0 := bounds.Min.X + int(math.Floor(b.X*w))
	y0 := bounds.Min.Y + int(math.Floor(b.Y*h))
	x1 := bounds.Min.X + int(math.Ceil((b.X+b.W)*w))
	y1 := bounds.Min.Y + int(math.Ceil((b.Y+b.H)*h))

	return image.Rect(x0, y0, x1, y1).Intersect(bounds)
}

// ClientLocalizer trusts the capture device's own face detector: it
// reports the box the client attached to the frame, or no face when the
// client attached none. Detection itself stays on-device where it can
// run against the camera hardware.
type ClientLocalizer struct{}

// Locate returns the client-provided bounding box, if any.
func (ClientLocalizer) Locate(frame Frame) (BoundingBox, bool) {
	if frame.Face == nil || !frame.Face.Valid() {
		return BoundingBox{}, false
	}
	return *frame.Face, true
}
