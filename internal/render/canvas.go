package render

import (
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
)

// Canvas is a Renderer backed by a gg context.
type Canvas struct {
	dc *gg.Context
}

// NewCanvas creates a width x height canvas cleared to the background colour.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{dc: gg.NewContext(width, height)}
	c.Clear(ColorBackground)
	return c
}

// Clear fills the whole canvas.
func (c *Canvas) Clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

func (c *Canvas) SetColor(col color.Color) { c.dc.SetColor(col) }

func (c *Canvas) SetLineWidth(w float64) { c.dc.SetLineWidth(w) }

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.dc.DrawRectangle(x, y, w, h)
	c.dc.Fill()
}

func (c *Canvas) FillCircle(x, y, r float64) {
	c.dc.DrawCircle(x, y, r)
	c.dc.Fill()
}

func (c *Canvas) StrokeLine(x1, y1, x2, y2 float64) {
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}

// Image returns the backing image.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

// EncodePNG writes the canvas as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }
