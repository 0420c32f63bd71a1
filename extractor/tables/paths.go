package tables

import (
	"fmt"
	"math"

	"github.com/dslipak/pdf"
)

// Segment is a straight stroked line in PDF space.
type Segment struct {
	X0, Y0, X1, Y1 float64
}

// ctm is an affine transform [a b c d e f] as used by the cm operator.
type ctm [6]float64

var identity = ctm{1, 0, 0, 1, 0, 0}

// then returns the transform that applies m first and n second.
func (m ctm) then(n ctm) ctm {
	return ctm{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m ctm) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// pathReader collects painted rectangles and line segments from a content
// stream. Paths are only kept once a painting operator is seen.
type pathReader struct {
	gs    ctm
	stack []ctm

	rects    []Rect
	segments []Segment

	pendingRects    []Rect
	pendingSegments []Segment
	cur, start      [2]float64
	open            bool
}

// readPaths walks every content stream of the page.
func readPaths(p pdf.Page) ([]Rect, []Segment) {
	pr := &pathReader{gs: identity}

	contents := p.V.Key("Contents")
	if contents.Kind() == pdf.Array {
		for i := 0; i < contents.Len(); i++ {
			pr.read(contents.Index(i))
		}
	} else {
		pr.read(contents)
	}
	return pr.rects, pr.segments
}

func (pr *pathReader) read(strm pdf.Value) {
	if strm.IsNull() {
		return
	}
	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]float64, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop().Float64()
		}
		pr.do(op, args)
	})
}

func (pr *pathReader) do(op string, args []float64) {
	switch op {
	case "q":
		pr.stack = append(pr.stack, pr.gs)
	case "Q":
		if n := len(pr.stack) - 1; n >= 0 {
			pr.gs = pr.stack[n]
			pr.stack = pr.stack[:n]
		}
	case "cm":
		if len(args) != 6 {
			panic(fmt.Sprintf("bad cm: %d operands", len(args)))
		}
		pr.gs = ctm{args[0], args[1], args[2], args[3], args[4], args[5]}.then(pr.gs)

	case "m":
		if len(args) == 2 {
			pr.cur = [2]float64{args[0], args[1]}
			pr.start = pr.cur
			pr.open = true
		}
	case "l":
		if len(args) == 2 && pr.open {
			next := [2]float64{args[0], args[1]}
			pr.line(pr.cur, next)
			pr.cur = next
		}
	case "c", "v", "y":
		// Curves never rule a table; only the current point moves.
		if len(args) >= 2 {
			pr.cur = [2]float64{args[len(args)-2], args[len(args)-1]}
		}
	case "h":
		pr.closePath()
	case "re":
		if len(args) != 4 {
			panic(fmt.Sprintf("bad re: %d operands", len(args)))
		}
		pr.rect(args[0], args[1], args[2], args[3])

	case "s", "b", "b*":
		pr.closePath()
		pr.paint()
	case "S", "f", "F", "f*", "B", "B*":
		pr.paint()
	case "n":
		pr.discard()
	}
}

func (pr *pathReader) line(from, to [2]float64) {
	x0, y0 := pr.gs.apply(from[0], from[1])
	x1, y1 := pr.gs.apply(to[0], to[1])
	pr.pendingSegments = append(pr.pendingSegments, Segment{x0, y0, x1, y1})
}

func (pr *pathReader) closePath() {
	if pr.open && pr.cur != pr.start {
		pr.line(pr.cur, pr.start)
	}
	pr.cur = pr.start
}

func (pr *pathReader) rect(x, y, w, h float64) {
	xs, ys := make([]float64, 0, 4), make([]float64, 0, 4)
	for _, c := range [][2]float64{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}} {
		tx, ty := pr.gs.apply(c[0], c[1])
		xs = append(xs, tx)
		ys = append(ys, ty)
	}
	pr.pendingRects = append(pr.pendingRects, Rect{
		X0: math.Min(math.Min(xs[0], xs[1]), math.Min(xs[2], xs[3])),
		Y0: math.Min(math.Min(ys[0], ys[1]), math.Min(ys[2], ys[3])),
		X1: math.Max(math.Max(xs[0], xs[1]), math.Max(xs[2], xs[3])),
		Y1: math.Max(math.Max(ys[0], ys[1]), math.Max(ys[2], ys[3])),
	})
	pr.cur = [2]float64{x, y}
	pr.start = pr.cur
	pr.open = true
}

func (pr *pathReader) paint() {
	pr.rects = append(pr.rects, pr.pendingRects...)
	pr.segments = append(pr.segments, pr.pendingSegments...)
	pr.discard()
}

func (pr *pathReader) discard() {
	pr.pendingRects = pr.pendingRects[:0]
	pr.pendingSegments = pr.pendingSegments[:0]
	pr.open = false
}
