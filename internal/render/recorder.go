package render

import "image/color"

// Op is one recorded draw call.
type Op struct {
	Kind  string
	Args  []float64
	Color color.Color
}

// Recorder is a Renderer that keeps every call, for tests.
type Recorder struct {
	Ops   []Op
	color color.Color
}

func (r *Recorder) SetColor(c color.Color) { r.color = c }

func (r *Recorder) SetLineWidth(w float64) {}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.Ops = append(r.Ops, Op{Kind: "rect", Args: []float64{x, y, w, h}, Color: r.color})
}

func (r *Recorder) FillCircle(x, y, rad float64) {
	r.Ops = append(r.Ops, Op{Kind: "circle", Args: []float64{x, y, rad}, Color: r.color})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2 float64) {
	r.Ops = append(r.Ops, Op{Kind: "line", Args: []float64{x1, y1, x2, y2}, Color: r.color})
}

// Count returns how many ops of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
