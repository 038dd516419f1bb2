package actiondetect

import (
	"context"

	"gocv.io/x/gocv"
)

// Detector is the capability of running the action detection Model over one
// or more frames.  Implementations must return one RawOutput per frame, in
// frame order, only reporting the requested class ids.
type Detector interface {
	Predict(ctx context.Context, frames []gocv.Mat, classes []int) ([]RawOutput, error)
}

// RawOutput is the unprocessed Model result for a single frame.  Boxes,
// Confidences and ClassIDs are parallel, one entry per detected region.
type RawOutput struct {
	// Boxes are the region coordinates in source frame pixels as
	// [x1, y1, x2, y2]
	Boxes [][4]float32 `json:"boxes"`
	// Confidences are the detection scores in the range [0,1]
	Confidences []float32 `json:"confidences"`
	// ClassIDs are the Model class ids of each region
	ClassIDs []int `json:"class_ids"`
}

// Len returns the number of detected regions going by the box count
func (r RawOutput) Len() int {
	return len(r.Boxes)
}
