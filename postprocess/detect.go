package postprocess

import (
	"encoding/json"
	"image"
)

// Item is a detection that can be rendered, either a BoundingBox or a
// KeypointBox
type Item interface {
	// Name is the label of the detected action
	Name() string
	// Box is the region the action was detected in
	Box() BoxRect
	// Center is the midpoint of Box
	Center() image.Point
}

// BoxRect are the dimensions of the bounding box of a detect object
type BoxRect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// NewBoxRect converts the Model's float [x1, y1, x2, y2] coordinates into
// pixel positions, truncating toward zero
func NewBoxRect(xyxy [4]float32) BoxRect {
	return BoxRect{
		Left:   int(xyxy[0]),
		Top:    int(xyxy[1]),
		Right:  int(xyxy[2]),
		Bottom: int(xyxy[3]),
	}
}

// Rect returns the box as an image.Rectangle
func (b BoxRect) Rect() image.Rectangle {
	return image.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// Center returns the midpoint of the box
func (b BoxRect) Center() image.Point {
	return image.Pt((b.Left+b.Right)/2, (b.Top+b.Bottom)/2)
}

// BoundingBox is a single action detected in a frame
type BoundingBox struct {
	box  BoxRect
	name string
	conf float32
}

// NewBoundingBox creates a BoundingBox for the action name with confidence
// score conf found at box
func NewBoundingBox(box BoxRect, name string, conf float32) BoundingBox {
	return BoundingBox{box: box, name: name, conf: conf}
}

// Name returns the action label
func (b BoundingBox) Name() string { return b.name }

// Box returns the bounding box dimensions of the action location
func (b BoundingBox) Box() BoxRect { return b.box }

// Conf returns the confidence score of the detection
func (b BoundingBox) Conf() float32 { return b.conf }

// Center returns the midpoint of the bounding box
func (b BoundingBox) Center() image.Point { return b.box.Center() }

type boundingBoxJSON struct {
	Name   string      `json:"name"`
	Box    BoxRect     `json:"box"`
	Conf   float32     `json:"conf"`
	Center image.Point `json:"center"`
}

// MarshalJSON implements json.Marshaler
func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal(boundingBoxJSON{
		Name:   b.name,
		Box:    b.box,
		Conf:   b.conf,
		Center: b.Center(),
	})
}

// KeyPoint is a single pose keypoint in frame pixels
type KeyPoint struct {
	X     int
	Y     int
	Score float32
}

// KeypointBox is a detection from a pose Model carrying keypoints as well
// as its bounding box
type KeypointBox struct {
	BoundingBox
	keyPoints []KeyPoint
}

// NewKeypointBox creates a KeypointBox.  The keypoints are copied.
func NewKeypointBox(box BoxRect, name string, conf float32, keyPoints []KeyPoint) KeypointBox {

	kp := make([]KeyPoint, len(keyPoints))
	copy(kp, keyPoints)

	return KeypointBox{
		BoundingBox: NewBoundingBox(box, name, conf),
		keyPoints:   kp,
	}
}

// KeyPoints returns a copy of the keypoints
func (k KeypointBox) KeyPoints() []KeyPoint {
	kp := make([]KeyPoint, len(k.keyPoints))
	copy(kp, k.keyPoints)
	return kp
}

// ExtractClasses returns the boxes labelled name, keeping their order
func ExtractClasses(boxes []BoundingBox, name string) []BoundingBox {

	out := make([]BoundingBox, 0)

	for _, b := range boxes {
		if b.name == name {
			out = append(out, b)
		}
	}

	return out
}
