package postprocess

import (
	"bytes"
	"encoding/json"
)

// DetectionGroup holds the detections of a single frame keyed by label.
// Labels keep the order they were added in.
type DetectionGroup struct {
	labels []string
	boxes  map[string][]BoundingBox
}

// NewDetectionGroup returns a group with an empty entry for each label
func NewDetectionGroup(labels []string) DetectionGroup {

	g := DetectionGroup{
		labels: make([]string, 0, len(labels)),
		boxes:  make(map[string][]BoundingBox, len(labels)),
	}

	for _, l := range labels {
		g.entry(l)
	}

	return g
}

// entry returns the box list of label, inserting an empty one when the
// label has not been seen before
func (g *DetectionGroup) entry(label string) []BoundingBox {

	if g.boxes == nil {
		g.boxes = make(map[string][]BoundingBox)
	}

	list, ok := g.boxes[label]

	if !ok {
		list = make([]BoundingBox, 0)
		g.boxes[label] = list
		g.labels = append(g.labels, label)
	}

	return list
}

// add appends the box to its label's list
func (g *DetectionGroup) add(b BoundingBox) {
	g.boxes[b.name] = append(g.entry(b.name), b)
}

// Labels returns the labels in the group
func (g DetectionGroup) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// Get returns the detections of label in detection order
func (g DetectionGroup) Get(label string) []BoundingBox {
	return g.boxes[label]
}

// Has reports whether label has an entry, even an empty one
func (g DetectionGroup) Has(label string) bool {
	_, ok := g.boxes[label]
	return ok
}

// Len returns the total number of detections across all labels
func (g DetectionGroup) Len() int {

	n := 0

	for _, list := range g.boxes {
		n += len(list)
	}

	return n
}

// Items returns every detection as a renderable Item, grouped by label in
// label order
func (g DetectionGroup) Items() []Item {

	out := make([]Item, 0, g.Len())

	for _, l := range g.labels {
		for _, b := range g.boxes[l] {
			out = append(out, b)
		}
	}

	return out
}

// Map returns a copy of the label to detections mapping
func (g DetectionGroup) Map() map[string][]BoundingBox {

	out := make(map[string][]BoundingBox, len(g.boxes))

	for l, list := range g.boxes {
		cp := make([]BoundingBox, len(list))
		copy(cp, list)
		out[l] = cp
	}

	return out
}

// MarshalJSON implements json.Marshaler, writing labels in group order
func (g DetectionGroup) MarshalJSON() ([]byte, error) {

	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, l := range g.labels {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(l)

		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(g.boxes[l])

		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
