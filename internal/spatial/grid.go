package spatial

import "math"

// Grid is a cell-based index over 2D points. Range lookups visit only the
// cells overlapping the search square; the caller does fine-grained
// distance filtering. Items are caller-chosen ints, typically indexes into
// a per-frame slice. Not safe for concurrent use.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
	n        int
}

type cellKey struct {
	cx int64
	cy int64
}

// NewGrid creates a grid with square cells of the given size. Sizes that
// are not positive fall back to 1.
func NewGrid(cellSize float64) *Grid {
	if !(cellSize > 0) || math.IsInf(cellSize, 1) {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}
}

func (g *Grid) CellSize() float64 { return g.cellSize }

// Len is the number of items in the grid.
func (g *Grid) Len() int { return g.n }

func (g *Grid) coord(v float64) int64 {
	return int64(math.Floor(v / g.cellSize))
}

func (g *Grid) key(x, y float64) cellKey {
	return cellKey{cx: g.coord(x), cy: g.coord(y)}
}

// Add places item at (x, y).
func (g *Grid) Add(item int, x, y float64) {
	k := g.key(x, y)
	g.cells[k] = append(g.cells[k], item)
	g.n++
}

// Remove takes item out of the cell containing (x, y). It reports whether
// the item was found there.
func (g *Grid) Remove(item int, x, y float64) bool {
	k := g.key(x, y)
	cell := g.cells[k]
	for i, it := range cell {
		if it != item {
			continue
		}
		cell = append(cell[:i], cell[i+1:]...)
		if len(cell) == 0 {
			delete(g.cells, k)
		} else {
			g.cells[k] = cell
		}
		g.n--
		return true
	}
	return false
}

// Move updates item's cell when its position changes.
func (g *Grid) Move(item int, oldX, oldY, newX, newY float64) {
	if g.key(oldX, oldY) == g.key(newX, newY) {
		return
	}
	if g.Remove(item, oldX, oldY) {
		g.Add(item, newX, newY)
	}
}

// Reset empties the grid.
func (g *Grid) Reset() {
	clear(g.cells)
	g.n = 0
}

// Nearby appends to dst every item whose cell overlaps the square of the
// given radius around (x, y) and returns the extended slice. Order is
// unspecified.
func (g *Grid) Nearby(x, y, radius float64, dst []int) []int {
	if radius < 0 || g.n == 0 {
		return dst
	}
	minX, maxX := g.coord(x-radius), g.coord(x+radius)
	minY, maxY := g.coord(y-radius), g.coord(y+radius)

	// Wide searches scan the occupied cells instead of the covered ones.
	spanX, spanY := float64(maxX-minX+1), float64(maxY-minY+1)
	if spanX*spanY > float64(len(g.cells)) {
		for k, cell := range g.cells {
			if k.cx >= minX && k.cx <= maxX && k.cy >= minY && k.cy <= maxY {
				dst = append(dst, cell...)
			}
		}
		return dst
	}

	for cx := minX; cx <= maxX; cx++ {
		for cy := minY; cy <= maxY; cy++ {
			dst = append(dst, g.cells[cellKey{cx: cx, cy: cy}]...)
		}
	}
	return dst
}
