// Package gcell implements the routing-capacity grid: a 2-D partition
// of the routing area into half-open rectangular cells, each carrying
// per-layer density/feedthrough counters and per-direction edge
// capacities to neighbouring cells (spec §4.5).
//
// Grounded on the teacher's internal/board package (eurocard.go,
// s100.go, isa.go: fixed physical grids described by row/column
// geometry and per-cell attributes), generalised from a fixed
// connector-pitch grid to cut-line-derived rows and columns; density
// statistics are wired to gonum/stat rather than hand-rolled, following
// gonum's use elsewhere in the retrieval pack for numeric aggregation.
package gcell

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"vlsix/internal/layer"
	"vlsix/pkg/geometry"
)

// GCell is one cell of the routing grid.
type GCell struct {
	Index int
	Row   int
	Col   int
	BBox  geometry.Box

	density      map[layer.ID]float64
	feedthroughs map[layer.ID]int
}

func newGCell(index, row, col int, bb geometry.Box) *GCell {
	return &GCell{
		Index:        index,
		Row:          row,
		Col:          col,
		BBox:         bb,
		density:      make(map[layer.ID]float64),
		feedthroughs: make(map[layer.ID]int),
	}
}

// Density returns the recorded density for l (spec invariant: density
// ≥ 0).
func (g *GCell) Density(l layer.ID) float64 { return g.density[l] }

// AddDensity accumulates occupied length/area on l. Panics if the
// result would go negative, since density must never fall below zero.
func (g *GCell) AddDensity(l layer.ID, delta float64) {
	nd := g.density[l] + delta
	if nd < 0 {
		panic("gcell: density cannot go negative")
	}
	g.density[l] = nd
}

// Feedthroughs returns the number of feed-through wires recorded for l.
func (g *GCell) Feedthroughs(l layer.ID) int { return g.feedthroughs[l] }

// AddFeedthrough increments the feed-through counter for l.
func (g *GCell) AddFeedthrough(l layer.ID) { g.feedthroughs[l]++ }

// Direction selects which neighbour-edge a capacity operation targets.
type Direction int

const (
	East Direction = iota
	South
)

// Grid is the GCell grid derived from a horizontal and a vertical array
// of cut lines (spec §4.5).
type Grid struct {
	xCuts []geometry.DbU // ascending, len = cols+1
	yCuts []geometry.DbU // ascending, len = rows+1

	rows, cols int
	cells      []*GCell // row-major: index = row*cols+col

	hEdgeCap [][]int // [row][col] capacity of the edge from (row,col) to (row,col+1); cols-1 wide
	vEdgeCap [][]int // [row][col] capacity of the edge from (row,col) to (row+1,col); rows-1 tall
}

// NewGrid builds a grid from ascending cut-line arrays, seeding every
// edge with initialCapacity (spec §6.1: cut lines bootstrap the grid
// from the Global Router Oracle, or a test fixture).
func NewGrid(xCuts, yCuts []geometry.DbU, initialCapacity int) *Grid {
	if len(xCuts) < 2 || len(yCuts) < 2 {
		panic("gcell: need at least two cut lines per axis")
	}
	assertAscending(xCuts)
	assertAscending(yCuts)

	cols := len(xCuts) - 1
	rows := len(yCuts) - 1

	g := &Grid{
		xCuts: append([]geometry.DbU(nil), xCuts...),
		yCuts: append([]geometry.DbU(nil), yCuts...),
		rows:  rows,
		cols:  cols,
		cells: make([]*GCell, rows*cols),
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			bb := geometry.NewBox(xCuts[c], yCuts[r], xCuts[c+1], yCuts[r+1])
			g.cells[r*cols+c] = newGCell(r*cols+c, r, c, bb)
		}
	}

	g.hEdgeCap = make([][]int, rows)
	for r := range g.hEdgeCap {
		g.hEdgeCap[r] = make([]int, maxInt(cols-1, 0))
		for c := range g.hEdgeCap[r] {
			g.hEdgeCap[r][c] = initialCapacity
		}
	}
	g.vEdgeCap = make([][]int, maxInt(rows-1, 0))
	for r := range g.vEdgeCap {
		g.vEdgeCap[r] = make([]int, cols)
		for c := range g.vEdgeCap[r] {
			g.vEdgeCap[r][c] = initialCapacity
		}
	}

	return g
}

func assertAscending(cuts []geometry.DbU) {
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			panic("gcell: cut lines must be strictly ascending")
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Rows and Cols report the grid dimensions.
func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// At returns the gcell at (row,col), or nil if out of range.
func (g *Grid) At(row, col int) *GCell {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return nil
	}
	return g.cells[row*g.cols+col]
}

// GCellAt returns the gcell whose half-open box contains p (spec §4.5:
// "gcellAt(point) -> GCell | None").
func (g *Grid) GCellAt(p geometry.Point) (*GCell, bool) {
	col := searchHalfOpen(g.xCuts, p.X)
	row := searchHalfOpen(g.yCuts, p.Y)
	if col < 0 || row < 0 {
		return nil, false
	}
	return g.At(row, col), true
}

// searchHalfOpen returns i such that cuts[i] <= x < cuts[i+1], or -1 if
// x lies outside [cuts[0], cuts[len-1]).
func searchHalfOpen(cuts []geometry.DbU, x geometry.DbU) int {
	if x < cuts[0] || x >= cuts[len(cuts)-1] {
		return -1
	}
	// sort.Search finds the first index where cuts[i] > x; the
	// containing interval index is one less.
	i := sort.Search(len(cuts), func(i int) bool { return cuts[i] > x })
	return i - 1
}

// ForEachAlong visits, in row-major order, every gcell whose bounding
// box intersects the Manhattan segment from `from` to `to` (spec §4.5:
// "visits gcells a wire crosses in row-major order"). Only horizontal
// or vertical segments are meaningful for a routing wire; a degenerate
// (point) segment visits the single containing gcell.
func (g *Grid) ForEachAlong(from, to geometry.Point, f func(*GCell)) {
	lowX, highX := from.X, to.X
	if lowX > highX {
		lowX, highX = highX, lowX
	}
	lowY, highY := from.Y, to.Y
	if lowY > highY {
		lowY, highY = highY, lowY
	}
	// Widen a degenerate axis by one DbU so the half-open box test below
	// still finds the row/column the segment actually runs through.
	segHighX, segHighY := highX, highY
	if lowX == highX {
		segHighX = lowX + 1
	}
	if lowY == highY {
		segHighY = lowY + 1
	}
	seg := geometry.NewBox(lowX, lowY, segHighX, segHighY)

	colRangeStart, colRangeEnd := searchHalfOpenRange(g.xCuts, lowX, highX)
	colStart, colEnd := clampRange(colRangeStart, colRangeEnd, g.cols)
	rowRangeStart, rowRangeEnd := searchHalfOpenRange(g.yCuts, lowY, highY)
	rowStart, rowEnd := clampRange(rowRangeStart, rowRangeEnd, g.rows)

	for r := rowStart; r <= rowEnd; r++ {
		for c := colStart; c <= colEnd; c++ {
			cell := g.At(r, c)
			if cell != nil && cell.BBox.Intersects(seg) {
				f(cell)
			}
		}
	}
}

func searchHalfOpenRange(cuts []geometry.DbU, low, high geometry.DbU) (int, int) {
	start := searchHalfOpen(cuts, low)
	if start < 0 {
		start = 0
	}
	end := searchHalfOpen(cuts, high)
	if end < 0 {
		end = len(cuts) - 2
	}
	return start, end
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end >= n {
		end = n - 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// edge capacity operations take (start row/col) and a direction.

// EdgeCapacity returns the current capacity of the edge leaving
// (row,col) in dir.
func (g *Grid) EdgeCapacity(row, col int, dir Direction) (int, bool) {
	switch dir {
	case East:
		if col < 0 || col >= g.cols-1 || row < 0 || row >= g.rows {
			return 0, false
		}
		return g.hEdgeCap[row][col], true
	case South:
		if row < 0 || row >= g.rows-1 || col < 0 || col >= g.cols {
			return 0, false
		}
		return g.vEdgeCap[row][col], true
	default:
		return 0, false
	}
}

// IncreaseEdgeCapacity adjusts the edge's capacity by delta, clamping
// the result to zero (spec §4.5: "increaseEdgeCapacity(Δ) clamps to
// zero").
func (g *Grid) IncreaseEdgeCapacity(row, col int, dir Direction, delta int) {
	switch dir {
	case East:
		if col < 0 || col >= g.cols-1 || row < 0 || row >= g.rows {
			return
		}
		g.hEdgeCap[row][col] = clampNonNegative(g.hEdgeCap[row][col] + delta)
	case South:
		if row < 0 || row >= g.rows-1 || col < 0 || col >= g.cols {
			return
		}
		g.vEdgeCap[row][col] = clampNonNegative(g.vEdgeCap[row][col] + delta)
	}
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// CheckEdgeOverflow reports whether any edge's remaining capacity is
// below the given reserve (spec §4.5 and §6.4's
// hEdgeReservedLocal/vEdgeReservedLocal options).
func (g *Grid) CheckEdgeOverflow(hReserve, vReserve int) bool {
	for _, row := range g.hEdgeCap {
		for _, remaining := range row {
			if remaining < hReserve {
				return true
			}
		}
	}
	for _, row := range g.vEdgeCap {
		for _, remaining := range row {
			if remaining < vReserve {
				return true
			}
		}
	}
	return false
}

// DensityStats returns the mean and (sample, n-1) standard deviation of
// l's density across every gcell, using gonum/stat rather than a
// hand-rolled accumulator.
func (g *Grid) DensityStats(l layer.ID) (mean, stdDev float64) {
	if len(g.cells) == 0 {
		return 0, 0
	}
	values := make([]float64, len(g.cells))
	for i, c := range g.cells {
		values[i] = c.Density(l)
	}
	mean, stdDev = stat.MeanStdDev(values, nil)
	return mean, stdDev
}

// Saturated reports whether l's density in cell exceeds ratio times the
// mean density across the grid (spec §6.4's saturateRatio option).
func (g *Grid) Saturated(cell *GCell, l layer.ID, ratio float64) bool {
	mean, _ := g.DensityStats(l)
	if mean == 0 {
		return false
	}
	return cell.Density(l) > ratio*mean
}
