// Package render draws rooms and entities for debugging. Entities only see the
// Renderer interface, never the backend.
package render

import (
	"image/color"

	"sentinel/internal/geom"
)

// Renderer is the drawing surface entities target.
type Renderer interface {
	SetColor(c color.Color)
	SetLineWidth(w float64)
	FillRect(x, y, w, h float64)
	FillCircle(x, y, r float64)
	StrokeLine(x1, y1, x2, y2 float64)
}

// Drawable is anything that can draw itself.
type Drawable interface {
	Draw(r Renderer, cam Camera)
}

// Camera maps world XZ units to pixels.
type Camera struct {
	Scale  float64   // pixels per world unit
	Offset geom.Vec2 // world point drawn at the pixel origin
}

// NewCamera returns a camera with the given scale and no offset.
func NewCamera(scale float64) Camera {
	return Camera{Scale: scale}
}

// ToScreen converts a world point to pixel coordinates.
func (c Camera) ToScreen(p geom.Vec2) (float64, float64) {
	d := p.Sub(c.Offset)
	return d.X * c.Scale, d.Y * c.Scale
}

// Length converts a world distance to pixels.
func (c Camera) Length(l float64) float64 { return l * c.Scale }

// Palette used by the debug renderer.
var (
	ColorBackground = color.RGBA{12, 12, 28, 255}
	ColorFloor      = color.RGBA{40, 44, 60, 255}
	ColorWall       = color.RGBA{120, 124, 140, 255}
	ColorGlass      = color.RGBA{110, 180, 220, 255}
	ColorDoor       = color.RGBA{170, 120, 60, 255}
	ColorCrate      = color.RGBA{140, 100, 50, 255}
	ColorCollider   = color.RGBA{255, 255, 255, 120}
	ColorPlayer     = color.RGBA{80, 220, 120, 255}
	ColorDrone      = color.RGBA{240, 80, 80, 255}
	ColorTurret     = color.RGBA{240, 160, 40, 255}
	ColorTracer     = color.RGBA{255, 240, 150, 255}
	ColorSpark      = color.RGBA{255, 120, 60, 255}
	ColorInactive   = color.RGBA{90, 90, 90, 255}
)

// LockColor returns the tint of a lock marker index (0 red, 1 green, 2 blue).
func LockColor(i int) color.RGBA {
	switch i {
	case 0:
		return color.RGBA{220, 50, 50, 255}
	case 1:
		return color.RGBA{50, 200, 80, 255}
	default:
		return color.RGBA{60, 100, 230, 255}
	}
}

// WithAlpha returns c with alpha scaled by a in [0,1].
func WithAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A) * a)
	return c
}
