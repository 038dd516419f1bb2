package action

import (
	"context"
	"fmt"

	"github.com/swdee/go-actiondetect"
	"github.com/swdee/go-actiondetect/postprocess"
	"gocv.io/x/gocv"
)

// ActionDetector runs a Detector over frames and groups its output by
// action label
type ActionDetector struct {
	detector actiondetect.Detector
	registry *actiondetect.LabelRegistry
	// exclude are the labels excluded on every call
	exclude []string
	// classes is the active class list for calls without extra exclusions,
	// computed once so it is not rebuilt per frame
	classes []int
}

// NewActionDetector returns an ActionDetector for the labels in reg.  The
// exclude labels are never requested from the Detector.
func NewActionDetector(det actiondetect.Detector, reg *actiondetect.LabelRegistry,
	exclude ...string) *ActionDetector {

	ex := make([]string, len(exclude))
	copy(ex, exclude)

	return &ActionDetector{
		detector: det,
		registry: reg,
		exclude:  ex,
		classes:  actiondetect.ActiveClasses(reg, ex...),
	}
}

// Registry returns the label registry
func (a *ActionDetector) Registry() *actiondetect.LabelRegistry {
	return a.registry
}

// Classes returns the class ids requested from the Detector when exclude
// labels are passed in addition to those given at creation
func (a *ActionDetector) Classes(exclude ...string) []int {

	if len(exclude) == 0 {
		out := make([]int, len(a.classes))
		copy(out, a.classes)
		return out
	}

	all := make([]string, 0, len(a.exclude)+len(exclude))
	all = append(all, a.exclude...)
	all = append(all, exclude...)

	return actiondetect.ActiveClasses(a.registry, all...)
}

// Predict detects the actions in a single frame.  The exclude labels are
// skipped in addition to those given at creation.
func (a *ActionDetector) Predict(ctx context.Context, frame gocv.Mat,
	exclude ...string) (postprocess.DetectionGroup, error) {

	outputs, err := a.detector.Predict(ctx, []gocv.Mat{frame}, a.Classes(exclude...))

	if err != nil {
		return postprocess.DetectionGroup{}, fmt.Errorf("detector predict failed: %w", err)
	}

	if len(outputs) != 1 {
		return postprocess.DetectionGroup{}, fmt.Errorf("detector returned %d outputs for 1 frame", len(outputs))
	}

	return postprocess.Aggregate(outputs[0], a.registry)
}

// BatchPredict detects the actions in each frame with a single Detector
// call.  Results are in frame order.
func (a *ActionDetector) BatchPredict(ctx context.Context, frames []gocv.Mat,
	exclude ...string) ([]postprocess.DetectionGroup, error) {

	if len(frames) == 0 {
		return []postprocess.DetectionGroup{}, nil
	}

	outputs, err := a.detector.Predict(ctx, frames, a.Classes(exclude...))

	if err != nil {
		return nil, fmt.Errorf("detector predict failed: %w", err)
	}

	if len(outputs) != len(frames) {
		return nil, fmt.Errorf("detector returned %d outputs for %d frames", len(outputs), len(frames))
	}

	return postprocess.BatchAggregate(outputs, a.registry)
}
