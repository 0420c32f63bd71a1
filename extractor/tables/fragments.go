package tables

import (
	"math"
	"sort"
	"strings"
)

const (
	defaultLineTolerance = 2.0

	// Gaps are measured in ems of the glyph size.
	wordBreakGap = 1.0
	spaceGap     = 0.15
)

// Fragment is a run of glyphs that sit next to each other on one baseline.
type Fragment struct {
	Text   string
	X0, X1 float64
	Y      float64
	Size   float64
}

func (f Fragment) center() float64 {
	return (f.X0 + f.X1) / 2
}

// Merge joins glyphs, in content stream order, into fragments. A glyph
// continues the current fragment when it is on the same baseline and starts
// no more than one em after the previous glyph ended.
func Merge(glyphs []Glyph) []Fragment {
	var (
		out     []Fragment
		cur     *Fragment
		sb      strings.Builder
		lastX   float64
		lastEnd float64
	)

	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(sb.String())
		if cur.Text != "" {
			out = append(out, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, g := range glyphs {
		size := g.Size
		if size <= 0 {
			size = 1
		}

		if cur != nil {
			sameLine := math.Abs(g.Y-cur.Y) <= size*0.2
			gap := g.X - lastEnd
			if sameLine && g.X >= lastX-0.5 && gap <= size*wordBreakGap {
				if gap > size*spaceGap && g.S != " " && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteByte(' ')
				}
				sb.WriteString(g.S)
				lastX = g.X
				lastEnd = g.X + g.W
				if lastEnd > cur.X1 {
					cur.X1 = lastEnd
				}
				continue
			}
			flush()
		}

		cur = &Fragment{X0: g.X, X1: g.X + g.W, Y: g.Y, Size: size}
		sb.WriteString(g.S)
		lastX = g.X
		lastEnd = g.X + g.W
	}
	flush()

	return out
}

// Lines groups fragments into text lines from the top of the page down. A
// fragment joins a line when its baseline is within tol of the line's first
// fragment. Fragments within a line are ordered left to right.
func Lines(frags []Fragment, tol float64) [][]Fragment {
	if len(frags) == 0 {
		return nil
	}

	sorted := make([]Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var (
		lines  [][]Fragment
		line   []Fragment
		anchor float64
	)
	for i, f := range sorted {
		if i > 0 && math.Abs(f.Y-anchor) > tol {
			lines = append(lines, sortByX(line))
			line = nil
		}
		if len(line) == 0 {
			anchor = f.Y
		}
		line = append(line, f)
	}
	if len(line) > 0 {
		lines = append(lines, sortByX(line))
	}

	return lines
}

func sortByX(frags []Fragment) []Fragment {
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].X0 < frags[j].X0
	})
	return frags
}
