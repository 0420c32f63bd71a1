package tables

import (
	"math"
	"sort"
)

// StreamOptions tunes whitespace based detection.
type StreamOptions struct {
	// RowTolerance is the largest baseline distance, in points, between
	// fragments that still belong to the same row.
	RowTolerance float64
	// ColumnTolerance lets column spans that almost touch merge.
	ColumnTolerance float64
}

// DefaultStreamOptions mirrors the defaults of common stream extractors.
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{RowTolerance: 2}
}

type span struct {
	lo, hi float64
}

// DetectStream lays every fragment of a page out as one table. Rows are
// baseline clusters; columns are derived from the rows that have the most
// common number of fragments. It returns nil when the page has no text.
func DetectStream(frags []Fragment, opts StreamOptions) Grid {
	if len(frags) == 0 {
		return nil
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = DefaultStreamOptions().RowTolerance
	}

	rows := Lines(frags, opts.RowTolerance)
	cols := columnBounds(rows, frags, opts)
	if len(cols) == 0 {
		return nil
	}

	grid := make(Grid, len(rows))
	for ri, row := range rows {
		cells := make([]string, len(cols))
		for _, f := range row {
			ci := columnIndex(cols, f)
			if cells[ci] == "" {
				cells[ci] = f.Text
			} else {
				cells[ci] += " " + f.Text
			}
		}
		grid[ri] = cells
	}

	return grid
}

func columnBounds(rows [][]Fragment, frags []Fragment, opts StreamOptions) []span {
	ncols := modalCount(rows)
	if ncols == 0 {
		return nil
	}

	var spans []span
	for _, row := range rows {
		if len(row) != ncols {
			continue
		}
		for _, f := range row {
			spans = append(spans, span{f.X0, f.X1})
		}
	}
	cols := mergeSpans(spans, opts.ColumnTolerance)

	// Text sitting between or outside the detected columns gets columns of
	// its own.
	var loose []Fragment
	for _, f := range frags {
		if f.X0 > cols[len(cols)-1].hi || f.X1 < cols[0].lo {
			loose = append(loose, f)
			continue
		}
		for i := 1; i < len(cols); i++ {
			if f.X0 > cols[i-1].hi && f.X1 < cols[i].lo {
				loose = append(loose, f)
				break
			}
		}
	}
	if len(loose) > 0 {
		looseRows := Lines(loose, opts.RowTolerance)
		widest := 0
		for _, r := range looseRows {
			if len(r) > widest {
				widest = len(r)
			}
		}
		var extra []span
		for _, r := range looseRows {
			if len(r) != widest {
				continue
			}
			for _, f := range r {
				extra = append(extra, span{f.X0, f.X1})
			}
		}
		cols = append(cols, mergeSpans(extra, opts.ColumnTolerance)...)
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, f := range frags {
		minX = math.Min(minX, f.X0)
		maxX = math.Max(maxX, f.X1)
	}

	return joinSpans(cols, minX, maxX)
}

// modalCount is the most frequent number of fragments per row. Single
// fragment rows are ignored when any other count exists, since they are
// usually titles or footers. Ties go to the smaller count.
func modalCount(rows [][]Fragment) int {
	freq := map[int]int{}
	for _, r := range rows {
		freq[len(r)]++
	}
	if len(freq) > 1 {
		delete(freq, 1)
	}

	best, bestFreq := 0, 0
	for n, c := range freq {
		if c > bestFreq || (c == bestFreq && n < best) {
			best, bestFreq = n, c
		}
	}
	return best
}

func mergeSpans(spans []span, tol float64) []span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].lo != spans[j].lo {
			return spans[i].lo < spans[j].lo
		}
		return spans[i].hi < spans[j].hi
	})

	merged := []span{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.lo <= last.hi+tol {
			last.lo = math.Min(last.lo, s.lo)
			last.hi = math.Max(last.hi, s.hi)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// joinSpans turns column spans into contiguous boundaries split at the
// midpoint of neighbouring spans.
func joinSpans(cols []span, minX, maxX float64) []span {
	sort.Slice(cols, func(i, j int) bool { return cols[i].lo < cols[j].lo })

	edges := []float64{minX}
	for i := 1; i < len(cols); i++ {
		edges = append(edges, (cols[i].lo+cols[i-1].hi)/2)
	}
	edges = append(edges, maxX)

	out := make([]span, 0, len(cols))
	for i := 0; i < len(edges)-1; i++ {
		out = append(out, span{edges[i], edges[i+1]})
	}
	return out
}

// columnIndex picks the column a fragment overlaps the most, relative to the
// column width. Fragments with no measurable overlap fall back to the column
// that contains their centre, then to the nearest one.
func columnIndex(cols []span, f Fragment) int {
	best, bestOverlap := -1, 0.0
	for i, c := range cols {
		width := c.hi - c.lo
		if width <= 0 {
			continue
		}
		overlap := math.Min(c.hi, f.X1) - math.Max(c.lo, f.X0)
		if overlap <= 0 {
			continue
		}
		if ratio := overlap / width; ratio > bestOverlap {
			best, bestOverlap = i, ratio
		}
	}
	if best >= 0 {
		return best
	}

	x := f.center()
	for i, c := range cols {
		if x >= c.lo && x <= c.hi {
			return i
		}
	}

	nearest, dist := 0, math.Inf(1)
	for i, c := range cols {
		d := math.Min(math.Abs(x-c.lo), math.Abs(x-c.hi))
		if d < dist {
			nearest, dist = i, d
		}
	}
	return nearest
}
