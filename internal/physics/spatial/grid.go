// Package spatial provides the uniform grid broad phase used by collision
// resolution.
//
// The grid stores integer collider indices (not pointers) in preallocated
// cells to keep per-frame rebuilds allocation free.
package spatial

import (
	"math"

	"sentinel/internal/geom"
)

// Grid buckets entity indices into fixed-size square cells.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col]),
// where columns run along world X and rows along world Z.
type Grid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32 // reusable buffer for query results

	// seen[id] == epoch marks ids already emitted by the current query
	seen  []uint32
	epoch uint32
}

// NewGrid creates a grid covering width x depth world units.
// maxEntities is used to preallocate cell capacity.
func NewGrid(width, depth, cellSize float64, maxEntities int) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(depth / cellSize))

	// Ensure at least 1x1 grid
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
		seen:        make([]uint32, maxEntities),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0] // Keep capacity, reset length
	}
}

func (g *Grid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *Grid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}

// Insert adds an entity at a single point. O(1).
func (g *Grid) Insert(id uint32, p geom.Vec2) {
	col := g.clampCol(int(p.X * g.invCellSize))
	row := g.clampRow(int(p.Y * g.invCellSize))
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], id)
}

// InsertBounds adds an entity to every cell its bounding box touches.
// Long wall segments land in several cells.
func (g *Grid) InsertBounds(id uint32, min, max geom.Vec2) {
	minCol := g.clampCol(int(math.Floor(min.X * g.invCellSize)))
	maxCol := g.clampCol(int(math.Floor(max.X * g.invCellSize)))
	minRow := g.clampRow(int(math.Floor(min.Y * g.invCellSize)))
	maxRow := g.clampRow(int(math.Floor(max.Y * g.invCellSize)))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.cells[idx] = append(g.cells[idx], id)
		}
	}
}

// QueryBounds returns every entity id whose cells overlap the box, each once.
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Copy the results if you need to persist them.
//
// Candidates may lie outside the box; callers run the narrow phase.
func (g *Grid) QueryBounds(min, max geom.Vec2) []uint32 {
	g.scratch = g.scratch[:0]
	g.epoch++
	if g.epoch == 0 {
		// Wrapped: stale marks could collide with the new epoch
		for i := range g.seen {
			g.seen[i] = 0
		}
		g.epoch = 1
	}

	minCol := g.clampCol(int(math.Floor(min.X * g.invCellSize)))
	maxCol := g.clampCol(int(math.Floor(max.X * g.invCellSize)))
	minRow := g.clampRow(int(math.Floor(min.Y * g.invCellSize)))
	maxRow := g.clampRow(int(math.Floor(max.Y * g.invCellSize)))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, id := range g.cells[row*g.cols+col] {
				if int(id) >= len(g.seen) {
					grown := make([]uint32, int(id)*2+1)
					copy(grown, g.seen)
					g.seen = grown
				}
				if g.seen[id] == g.epoch {
					continue
				}
				g.seen[id] = g.epoch
				g.scratch = append(g.scratch, id)
			}
		}
	}

	return g.scratch
}

// QueryRadius is QueryBounds over the square enclosing the circle.
func (g *Grid) QueryRadius(center geom.Vec2, radius float64) []uint32 {
	r := geom.V2(radius, radius)
	return g.QueryBounds(center.Sub(r), center.Add(r))
}

// Stats returns grid statistics for debugging/profiling.
func (g *Grid) Stats() GridStats {
	var total, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		count := len(cell)
		total += count
		if count > maxInCell {
			maxInCell = count
		}
		if count > 0 {
			nonEmpty++
		}
	}

	avg := 0.0
	if nonEmpty > 0 {
		avg = float64(total) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntries:   total,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avg,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntries   int
	MaxInCell      int
	AvgPerNonEmpty float64
}

// Dimensions returns the grid dimensions.
func (g *Grid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
