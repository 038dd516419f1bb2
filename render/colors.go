package render

import "image/color"

// Colors are in RGBA order.  gocv converts them to the BGR scalar order of
// OpenCV frames when drawing on a Mat.
var (
	Orange = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Aqua   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Purple = color.RGBA{R: 128, G: 0, B: 128, A: 255}
	Brown  = color.RGBA{R: 165, G: 42, B: 42, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}

	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Style is how detections of a label are drawn
type Style struct {
	Color color.RGBA
}

// Styles is a read only table of label name to Style
type Styles struct {
	table map[string]Style
}

// NewStyles creates a Styles table from a copy of the given mapping
func NewStyles(table map[string]Style) Styles {

	t := make(map[string]Style, len(table))

	for name, s := range table {
		t[name] = s
	}

	return Styles{table: t}
}

// DefaultStyles returns the styles of the volleyball action labels
func DefaultStyles() Styles {
	return NewStyles(map[string]Style{
		"spike":   {Color: Orange},
		"set":     {Color: Aqua},
		"receive": {Color: Green},
		"block":   {Color: Purple},
		"serve":   {Color: Brown},
		"ball":    {Color: Red},
	})
}

// Lookup returns the Style of the label name
func (s Styles) Lookup(name string) (Style, bool) {
	st, ok := s.table[name]
	return st, ok
}

// Len returns the number of styled labels
func (s Styles) Len() int {
	return len(s.table)
}
