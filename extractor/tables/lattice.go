package tables

import (
	"math"
	"sort"
	"strings"
)

// LatticeOptions tunes ruling line based detection. All values are in points.
type LatticeOptions struct {
	SnapTolerance         float64
	JoinTolerance         float64
	IntersectionTolerance float64
	MinEdgeLength         float64
}

// DefaultLatticeOptions returns the tolerances used by common lattice
// extractors.
func DefaultLatticeOptions() LatticeOptions {
	return LatticeOptions{
		SnapTolerance:         3,
		JoinTolerance:         3,
		IntersectionTolerance: 3,
		MinEdgeLength:         3,
	}
}

// edge is a horizontal (y0 == y1) or vertical (x0 == x1) ruling segment.
type edge struct {
	x0, y0, x1, y1 float64
}

type point struct {
	x, y float64
}

// cell uses PDF coordinates: top > bottom.
type cell struct {
	x0, top, x1, bottom float64
}

type crossing struct {
	h, v []int
}

// DetectLattice finds tables outlined by ruling lines and returns them top to
// bottom. Pages without rulings yield no tables.
func DetectLattice(pc PageContent, opts LatticeOptions) []Grid {
	horizontal, vertical := edgesFromRects(pc.Rects, opts.SnapTolerance)
	h, v := edgesFromSegments(pc.Segments, opts.SnapTolerance)
	horizontal, vertical = append(horizontal, h...), append(vertical, v...)
	horizontal = joinEdges(snapEdges(horizontal, opts.SnapTolerance, true), opts.JoinTolerance, true)
	vertical = joinEdges(snapEdges(vertical, opts.SnapTolerance, false), opts.JoinTolerance, false)
	horizontal = filterShort(horizontal, opts.MinEdgeLength, true)
	vertical = filterShort(vertical, opts.MinEdgeLength, false)
	if len(horizontal) == 0 || len(vertical) == 0 {
		return nil
	}

	crossings := intersect(horizontal, vertical, opts.IntersectionTolerance)
	cells := findCells(crossings)
	groups := groupCells(cells)

	grids := make([]Grid, 0, len(groups))
	for _, g := range groups {
		grids = append(grids, fillGrid(g, pc.Glyphs))
	}
	return grids
}

func edgesFromRects(rects []Rect, snap float64) (horizontal, vertical []edge) {
	for _, r := range rects {
		w, h := r.X1-r.X0, r.Y1-r.Y0
		switch {
		case h <= snap && w > h:
			y := (r.Y0 + r.Y1) / 2
			horizontal = append(horizontal, edge{r.X0, y, r.X1, y})
		case w <= snap && h > w:
			x := (r.X0 + r.X1) / 2
			vertical = append(vertical, edge{x, r.Y0, x, r.Y1})
		default:
			horizontal = append(horizontal,
				edge{r.X0, r.Y1, r.X1, r.Y1},
				edge{r.X0, r.Y0, r.X1, r.Y0})
			vertical = append(vertical,
				edge{r.X0, r.Y0, r.X0, r.Y1},
				edge{r.X1, r.Y0, r.X1, r.Y1})
		}
	}
	return horizontal, vertical
}

// edgesFromSegments keeps the stroked lines that are horizontal or vertical
// within tol. Diagonals are dropped.
func edgesFromSegments(segments []Segment, tol float64) (horizontal, vertical []edge) {
	for _, s := range segments {
		dx, dy := math.Abs(s.X1-s.X0), math.Abs(s.Y1-s.Y0)
		switch {
		case dy <= tol && dx > dy:
			y := (s.Y0 + s.Y1) / 2
			horizontal = append(horizontal, edge{math.Min(s.X0, s.X1), y, math.Max(s.X0, s.X1), y})
		case dx <= tol && dy > dx:
			x := (s.X0 + s.X1) / 2
			vertical = append(vertical, edge{x, math.Min(s.Y0, s.Y1), x, math.Max(s.Y0, s.Y1)})
		}
	}
	return horizontal, vertical
}

// snapEdges moves edges whose position differs by no more than tol onto
// their cluster's mean position.
func snapEdges(edges []edge, tol float64, horizontal bool) []edge {
	if len(edges) == 0 {
		return nil
	}
	pos := func(e edge) float64 {
		if horizontal {
			return e.y0
		}
		return e.x0
	}

	sorted := make([]edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool { return pos(sorted[i]) < pos(sorted[j]) })

	var out []edge
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && pos(sorted[i])-pos(sorted[i-1]) <= tol {
			continue
		}
		sum := 0.0
		for _, e := range sorted[start:i] {
			sum += pos(e)
		}
		mean := sum / float64(i-start)
		for _, e := range sorted[start:i] {
			if horizontal {
				e.y0, e.y1 = mean, mean
			} else {
				e.x0, e.x1 = mean, mean
			}
			out = append(out, e)
		}
		start = i
	}
	return out
}

// joinEdges merges collinear edges that overlap or nearly touch.
func joinEdges(edges []edge, tol float64, horizontal bool) []edge {
	if len(edges) == 0 {
		return nil
	}
	key := func(e edge) (pos, lo, hi float64) {
		if horizontal {
			return e.y0, e.x0, e.x1
		}
		return e.x0, e.y0, e.y1
	}

	sorted := make([]edge, len(edges))
	copy(sorted, edges)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, li, _ := key(sorted[i])
		pj, lj, _ := key(sorted[j])
		if pi != pj {
			return pi < pj
		}
		return li < lj
	})

	out := []edge{sorted[0]}
	for _, e := range sorted[1:] {
		last := &out[len(out)-1]
		pl, _, hl := key(*last)
		pe, le, he := key(e)
		if pl == pe && le <= hl+tol {
			if horizontal {
				last.x1 = math.Max(hl, he)
			} else {
				last.y1 = math.Max(hl, he)
			}
			continue
		}
		out = append(out, e)
	}
	return out
}

func filterShort(edges []edge, min float64, horizontal bool) []edge {
	out := edges[:0]
	for _, e := range edges {
		length := e.y1 - e.y0
		if horizontal {
			length = e.x1 - e.x0
		}
		if length >= min {
			out = append(out, e)
		}
	}
	return out
}

func intersect(horizontal, vertical []edge, tol float64) map[point]*crossing {
	out := map[point]*crossing{}
	for vi, v := range vertical {
		for hi, h := range horizontal {
			if v.x0 < h.x0-tol || v.x0 > h.x1+tol {
				continue
			}
			if h.y0 < v.y0-tol || h.y0 > v.y1+tol {
				continue
			}
			p := point{v.x0, h.y0}
			c, ok := out[p]
			if !ok {
				c = &crossing{}
				out[p] = c
			}
			c.h = append(c.h, hi)
			c.v = append(c.v, vi)
		}
	}
	return out
}

func shares(a, b []int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// findCells returns, for every intersection, the smallest cell that has it as
// its top-left corner and whose four sides are ruled.
func findCells(crossings map[point]*crossing) []cell {
	points := make([]point, 0, len(crossings))
	for p := range crossings {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].x != points[j].x {
			return points[i].x < points[j].x
		}
		return points[i].y > points[j].y
	})

	connectedV := func(a, b point) bool { return shares(crossings[a].v, crossings[b].v) }
	connectedH := func(a, b point) bool { return shares(crossings[a].h, crossings[b].h) }

	var cells []cell
	for i, pt := range points {
		var below, right []point
		for _, q := range points[i+1:] {
			if q.x == pt.x && q.y < pt.y {
				below = append(below, q)
			}
			if q.y == pt.y && q.x > pt.x {
				right = append(right, q)
			}
		}
		sort.Slice(below, func(a, b int) bool { return below[a].y > below[b].y })
		sort.Slice(right, func(a, b int) bool { return right[a].x < right[b].x })

	search:
		for _, b := range below {
			if !connectedV(pt, b) {
				continue
			}
			for _, r := range right {
				if !connectedH(pt, r) {
					continue
				}
				corner := point{r.x, b.y}
				if _, ok := crossings[corner]; !ok {
					continue
				}
				if connectedV(corner, r) && connectedH(corner, b) {
					cells = append(cells, cell{pt.x, pt.y, r.x, b.y})
					break search
				}
			}
		}
	}
	return cells
}

func (c cell) corners() [4]point {
	return [4]point{
		{c.x0, c.top}, {c.x0, c.bottom},
		{c.x1, c.top}, {c.x1, c.bottom},
	}
}

// groupCells clusters cells that share at least one corner into tables.
// Tables made of a single cell are dropped.
func groupCells(cells []cell) [][]cell {
	remaining := make([]cell, len(cells))
	copy(remaining, cells)

	var tables [][]cell
	for len(remaining) > 0 {
		corners := map[point]bool{}
		current := []cell{remaining[0]}
		for _, p := range remaining[0].corners() {
			corners[p] = true
		}
		remaining = remaining[1:]

		for grew := true; grew; {
			grew = false
			rest := remaining[:0]
			for _, c := range remaining {
				touching := false
				for _, p := range c.corners() {
					if corners[p] {
						touching = true
						break
					}
				}
				if !touching {
					rest = append(rest, c)
					continue
				}
				for _, p := range c.corners() {
					corners[p] = true
				}
				current = append(current, c)
				grew = true
			}
			remaining = rest
		}

		if len(current) > 1 {
			tables = append(tables, current)
		}
	}

	sort.SliceStable(tables, func(i, j int) bool {
		ti, tj := topLeft(tables[i]), topLeft(tables[j])
		if ti.y != tj.y {
			return ti.y > tj.y
		}
		return ti.x < tj.x
	})
	return tables
}

func topLeft(cells []cell) point {
	p := point{math.Inf(1), math.Inf(-1)}
	for _, c := range cells {
		if c.top > p.y || (c.top == p.y && c.x0 < p.x) {
			p = point{c.x0, c.top}
		}
	}
	return p
}

func fillGrid(cells []cell, glyphs []Glyph) Grid {
	var tops, lefts []float64
	seenTop, seenLeft := map[float64]bool{}, map[float64]bool{}
	for _, c := range cells {
		if !seenTop[c.top] {
			seenTop[c.top] = true
			tops = append(tops, c.top)
		}
		if !seenLeft[c.x0] {
			seenLeft[c.x0] = true
			lefts = append(lefts, c.x0)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(tops)))
	sort.Float64s(lefts)

	rowOf := map[float64]int{}
	for i, t := range tops {
		rowOf[t] = i
	}
	colOf := map[float64]int{}
	for i, l := range lefts {
		colOf[l] = i
	}

	grid := make(Grid, len(tops))
	for i := range grid {
		grid[i] = make([]string, len(lefts))
	}
	for _, c := range cells {
		grid[rowOf[c.top]][colOf[c.x0]] = cellText(c, glyphs)
	}
	return grid
}

func cellText(c cell, glyphs []Glyph) string {
	var inside []Glyph
	for _, g := range glyphs {
		cx := g.X + g.W/2
		cy := g.Y + g.Size*0.3
		if cx >= c.x0 && cx < c.x1 && cy <= c.top && cy > c.bottom {
			inside = append(inside, g)
		}
	}
	if len(inside) == 0 {
		return ""
	}

	lines := Lines(Merge(inside), defaultLineTolerance)
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		parts := make([]string, 0, len(line))
		for _, f := range line {
			parts = append(parts, f.Text)
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}
