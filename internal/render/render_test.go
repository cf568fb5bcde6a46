package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"sentinel/internal/geom"
)

func TestCameraToScreen(t *testing.T) {
	cam := Camera{Scale: 10, Offset: geom.V2(1, 2)}
	x, y := cam.ToScreen(geom.V2(3, 5))
	if x != 20 || y != 30 {
		t.Errorf("Expected (20,30), got (%f,%f)", x, y)
	}
	if cam.Length(0.5) != 5 {
		t.Errorf("Expected 5, got %f", cam.Length(0.5))
	}
}

func TestCanvasEncodesPNG(t *testing.T) {
	c := NewCanvas(32, 16)
	c.SetColor(ColorWall)
	c.FillRect(0, 0, 8, 8)
	c.SetLineWidth(2)
	c.StrokeLine(0, 0, 31, 15)
	c.FillCircle(16, 8, 4)

	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("Expected 32x16, got %dx%d", b.Dx(), b.Dy())
	}

	r, g, bl, _ := c.Image().At(2, 2).RGBA()
	wr, wg, wb, _ := color.Color(ColorWall).RGBA()
	if r != wr || g != wg || bl != wb {
		t.Error("Expected wall colour inside filled rect")
	}
}

func TestWithAlphaClamps(t *testing.T) {
	if WithAlpha(ColorPlayer, 2).A != 255 {
		t.Error("Alpha above 1 should clamp")
	}
	if WithAlpha(ColorPlayer, -1).A != 0 {
		t.Error("Alpha below 0 should clamp")
	}
}

func TestRecorderCounts(t *testing.T) {
	var r Recorder
	r.SetColor(ColorDrone)
	r.FillCircle(1, 1, 1)
	r.FillCircle(2, 2, 1)
	r.StrokeLine(0, 0, 1, 1)
	if r.Count("circle") != 2 || r.Count("line") != 1 || r.Count("rect") != 0 {
		t.Errorf("Unexpected op counts: %+v", r.Ops)
	}
	if r.Ops[0].Color != color.Color(ColorDrone) {
		t.Error("Expected recorded colour")
	}
}
