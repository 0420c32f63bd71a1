// Package tables detects tabular data on PDF pages.
//
// Two detectors are provided. DetectStream infers rows and columns from the
// position of text alone. DetectLattice builds cells from ruling lines drawn on
// the page. Both return raw Grids; header handling is left to the caller.
package tables

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// Grid is a table as detected on a page: rows of text cells.
type Grid [][]string

// Glyph is a single shown character with its baseline origin in PDF space.
type Glyph struct {
	X, Y float64
	W    float64
	Size float64
	S    string
}

// Rect is an axis aligned rectangle in PDF space (Y grows upwards).
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// PageContent is everything the detectors need from a single page. Rects
// are painted rectangles and Segments are stroked lines, both already
// transformed to page space.
type PageContent struct {
	Glyphs   []Glyph
	Rects    []Rect
	Segments []Segment
}

// ReadPage pulls glyphs, rectangles and stroked lines out of a page. The pdf
// package panics on malformed content streams, so panics are turned into
// errors here.
func ReadPage(p pdf.Page) (pc PageContent, err error) {
	if p.V.IsNull() {
		return pc, fmt.Errorf("page not found")
	}

	defer func() {
		if r := recover(); r != nil {
			pc = PageContent{}
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	content := p.Content()

	pc.Glyphs = make([]Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		pc.Glyphs = append(pc.Glyphs, Glyph{
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			Size: t.FontSize,
			S:    t.S,
		})
	}

	pc.Rects, pc.Segments = readPaths(p)

	return pc, nil
}

// Text renders the page as plain text, one line per baseline cluster.
func (pc PageContent) Text() string {
	lines := Lines(Merge(pc.Glyphs), defaultLineTolerance)

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, f := range line {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.Text)
		}
	}
	return sb.String()
}
