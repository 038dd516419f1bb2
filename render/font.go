package render

import (
	"gocv.io/x/gocv"
)

// Font defines the parameters for rendering label text
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Thickness int
	LineType  gocv.LineType
	// Offset is the distance in pixels between the text baseline and the
	// top of the bounding box
	Offset int
}

// DefaultFont returns default font settings
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.5,
		Thickness: 2,
		LineType:  gocv.Line8,
		Offset:    10,
	}
}
