package postprocess

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LabelStats summarises the detections of one label in a frame
type LabelStats struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	// MeanConf and MaxConf are zero when Count is zero
	MeanConf float64 `json:"mean_conf"`
	MaxConf  float64 `json:"max_conf"`
}

// Summarize returns per label detection statistics in group label order
func Summarize(g DetectionGroup) []LabelStats {

	out := make([]LabelStats, 0, len(g.labels))

	for _, l := range g.labels {

		boxes := g.boxes[l]
		s := LabelStats{Label: l, Count: len(boxes)}

		if len(boxes) > 0 {
			confs := make([]float64, len(boxes))

			for i, b := range boxes {
				confs[i] = float64(b.conf)
			}

			s.MeanConf = stat.Mean(confs, nil)
			s.MaxConf = floats.Max(confs)
		}

		out = append(out, s)
	}

	return out
}
