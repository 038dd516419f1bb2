package render

import (
	"image"
	"image/color"
	"image/draw"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas is a frame that boxes and text can be drawn onto
type Canvas interface {
	// Rectangle draws the outline of rect with lines thickness pixels wide.
	// A negative thickness fills the rectangle.
	Rectangle(rect image.Rectangle, clr color.RGBA, thickness int)
	// Text draws text with its baseline starting at pt
	Text(text string, pt image.Point, f Font, clr color.RGBA)
}

// MatCanvas draws onto a gocv Mat in place
type MatCanvas struct {
	Mat *gocv.Mat
}

// NewMatCanvas returns a Canvas drawing onto img
func NewMatCanvas(img *gocv.Mat) *MatCanvas {
	return &MatCanvas{Mat: img}
}

// Rectangle implements Canvas
func (c *MatCanvas) Rectangle(rect image.Rectangle, clr color.RGBA, thickness int) {
	gocv.Rectangle(c.Mat, rect, clr, thickness)
}

// Text implements Canvas
func (c *MatCanvas) Text(text string, pt image.Point, f Font, clr color.RGBA) {
	gocv.PutTextWithParams(c.Mat, text, pt, f.Face, f.Scale, clr, f.Thickness,
		f.LineType, false)
}

// ImageCanvas draws onto a Go image in place.  Text is drawn with a fixed
// 7x13 bitmap face, the Font face and scale only apply to MatCanvas.
type ImageCanvas struct {
	Img draw.Image
}

// NewImageCanvas returns a Canvas drawing onto img
func NewImageCanvas(img draw.Image) *ImageCanvas {
	return &ImageCanvas{Img: img}
}

// Rectangle implements Canvas.  Lines are centered on the rectangle edges
// as OpenCV draws them.
func (c *ImageCanvas) Rectangle(rect image.Rectangle, clr color.RGBA, thickness int) {

	src := image.NewUniform(clr)
	rect = rect.Canon()

	if thickness < 0 {
		// OpenCV rectangles include their bottom right corner
		draw.Draw(c.Img, image.Rectangle{Min: rect.Min, Max: rect.Max.Add(image.Pt(1, 1))},
			src, image.Point{}, draw.Over)
		return
	}

	if thickness == 0 {
		thickness = 1
	}

	for k := 0; k < thickness; k++ {

		// offsets run from outside to inside the edge
		r := rect.Inset(k - thickness/2)

		if r.Empty() {
			continue
		}

		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+1), // top
			image.Rect(r.Min.X, r.Max.Y, r.Max.X+1, r.Max.Y+1), // bottom
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y+1), // left
			image.Rect(r.Max.X, r.Min.Y, r.Max.X+1, r.Max.Y+1), // right
		}

		for _, e := range edges {
			draw.Draw(c.Img, e, src, image.Point{}, draw.Over)
		}
	}
}

// Text implements Canvas
func (c *ImageCanvas) Text(text string, pt image.Point, f Font, clr color.RGBA) {

	d := &font.Drawer{
		Dst:  c.Img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(pt.X, pt.Y),
	}

	d.DrawString(text)
}
