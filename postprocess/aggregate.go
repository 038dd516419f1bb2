package postprocess

import (
	"errors"
	"fmt"

	"github.com/swdee/go-actiondetect"
)

var (
	// ErrShapeMismatch is returned when the boxes, confidences and class ids
	// of a RawOutput differ in length
	ErrShapeMismatch = errors.New("raw output shape mismatch")
	// ErrUnknownClass is returned when the Detector reports a class id that
	// is not in the LabelRegistry
	ErrUnknownClass = errors.New("unknown class id")
)

// Aggregate groups the raw Model output of one frame by label.  Every label
// in the registry has an entry in the result, empty if nothing was detected,
// and detections keep their input order within each label.
func Aggregate(raw actiondetect.RawOutput, reg *actiondetect.LabelRegistry) (DetectionGroup, error) {

	n := len(raw.Boxes)

	if len(raw.Confidences) != n || len(raw.ClassIDs) != n {
		return DetectionGroup{}, fmt.Errorf("%w: %d boxes, %d confidences, %d class ids",
			ErrShapeMismatch, n, len(raw.Confidences), len(raw.ClassIDs))
	}

	group := NewDetectionGroup(reg.Labels())

	for i := 0; i < n; i++ {

		name, ok := reg.Name(raw.ClassIDs[i])

		if !ok {
			return DetectionGroup{}, fmt.Errorf("%w %d at detection %d", ErrUnknownClass, raw.ClassIDs[i], i)
		}

		group.add(NewBoundingBox(NewBoxRect(raw.Boxes[i]), name, raw.Confidences[i]))
	}

	return group, nil
}

// BatchAggregate runs Aggregate over the output of each frame in a batch.
// The results are in the same order as outputs.
func BatchAggregate(outputs []actiondetect.RawOutput, reg *actiondetect.LabelRegistry) ([]DetectionGroup, error) {

	groups := make([]DetectionGroup, len(outputs))

	for i, raw := range outputs {

		g, err := Aggregate(raw, reg)

		if err != nil {
			return nil, fmt.Errorf("error aggregating frame %d: %w", i, err)
		}

		groups[i] = g
	}

	return groups, nil
}
