package world

import (
	"sentinel/internal/geom"
	"sentinel/internal/physics"
	"sentinel/internal/render"
	"sentinel/internal/tile"
)

// DrawTiles paints every tile of the map.
func (m *Map) DrawTiles(r render.Renderer, cam render.Camera) {
	size := cam.Length(m.tileSize)
	for z := 0; z < m.depth; z++ {
		for x := 0; x < m.width; x++ {
			c := tile.C(x, z)
			switch code := m.TileAt(c); code {
			case tile.Wall:
				r.SetColor(render.ColorWall)
			case tile.Glass:
				r.SetColor(render.ColorGlass)
			case tile.Crate:
				r.SetColor(render.ColorCrate)
			case tile.Door:
				switch m.FunctionAt(c) {
				case tile.FuncLockRed:
					r.SetColor(render.LockColor(0))
				case tile.FuncLockGreen:
					r.SetColor(render.LockColor(1))
				case tile.FuncLockBlue:
					r.SetColor(render.LockColor(2))
				default:
					r.SetColor(render.ColorDoor)
				}
			default:
				r.SetColor(render.ColorFloor)
			}
			px, pz := cam.ToScreen(geom.V2(float64(x)*m.tileSize, float64(z)*m.tileSize))
			r.FillRect(px, pz, size, size)
		}
	}
}

// Draw paints static geometry, effects and the tracked player.
func (r *Room) Draw(rd render.Renderer, cam render.Camera) {
	rd.SetColor(render.ColorCollider)
	rd.SetLineWidth(1)
	for _, c := range r.static {
		drawShape(rd, cam, c.Shape)
	}

	for _, e := range r.effects {
		switch e.Kind {
		case EffectTracer:
			rd.SetColor(render.WithAlpha(render.ColorTracer, e.Alpha()))
			x1, y1 := cam.ToScreen(e.From)
			x2, y2 := cam.ToScreen(e.To)
			rd.StrokeLine(x1, y1, x2, y2)
		case EffectSpark:
			rd.SetColor(render.WithAlpha(render.ColorSpark, e.Alpha()))
			x, y := cam.ToScreen(e.From)
			rd.FillCircle(x, y, cam.Length(0.15))
		}
	}

	if r.player != nil {
		r.player.Draw(rd, cam)
	}
}

// Draw implements render.Drawable.
func (p *Player) Draw(r render.Renderer, cam render.Camera) {
	r.SetColor(render.ColorPlayer)
	x, y := cam.ToScreen(p.Position())
	r.FillCircle(x, y, cam.Length(p.cfg.Radius))
}

func drawShape(rd render.Renderer, cam render.Camera, s physics.Shape) {
	switch sh := s.(type) {
	case physics.Segment:
		x1, y1 := cam.ToScreen(sh.A)
		x2, y2 := cam.ToScreen(sh.B)
		rd.StrokeLine(x1, y1, x2, y2)
	case physics.Circle:
		x, y := cam.ToScreen(sh.C)
		rd.FillCircle(x, y, cam.Length(sh.R))
	case physics.Compound:
		for _, p := range sh.Parts {
			drawShape(rd, cam, p)
		}
	}
}
