package render

import (
	"image"

	"github.com/swdee/go-actiondetect/postprocess"
)

// DefaultLineThickness is the width in pixels of bounding box outlines
const DefaultLineThickness = 2

// Renderer draws detections with the Style of their label
type Renderer struct {
	styles        Styles
	font          Font
	lineThickness int
}

// NewRenderer returns a Renderer using the given styles, label font and box
// line thickness
func NewRenderer(styles Styles, font Font, lineThickness int) *Renderer {
	return &Renderer{
		styles:        styles,
		font:          font,
		lineThickness: lineThickness,
	}
}

// DefaultRenderer returns a Renderer for the volleyball action labels
func DefaultRenderer() *Renderer {
	return NewRenderer(DefaultStyles(), DefaultFont(), DefaultLineThickness)
}

// Render draws the bounding box and label of each item onto the canvas in
// order, so later items overlap earlier ones.  Items whose label has no
// Style are skipped.
func (r *Renderer) Render(c Canvas, items []postprocess.Item) Canvas {

	for _, item := range items {

		style, ok := r.styles.Lookup(item.Name())

		if !ok {
			continue
		}

		box := item.Box()

		// draw rectangle around detected action
		c.Rectangle(box.Rect(), style.Color, r.lineThickness)

		// label sits just above the top left corner
		c.Text(item.Name(), image.Pt(box.Left, box.Top-r.font.Offset), r.font, style.Color)
	}

	return c
}

// RenderGroup draws all detections of the group in label order
func (r *Renderer) RenderGroup(c Canvas, g postprocess.DetectionGroup) Canvas {
	return r.Render(c, g.Items())
}
