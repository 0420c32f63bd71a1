// Package pdftest writes small, uncompressed PDFs for tests. Every glyph is
// half an em wide so text positions are predictable.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// GlyphWidth is the advance of every character, in thousandths of an em.
const GlyphWidth = 500

type Page struct {
	ops []string
}

// Text shows s with its baseline origin at (x, y).
func (p *Page) Text(x, y, size float64, s string) *Page {
	p.ops = append(p.ops, fmt.Sprintf("BT /F1 %s Tf 1 0 0 1 %s %s Tm (%s) Tj ET",
		num(size), num(x), num(y), escape(s)))
	return p
}

// Row shows each cell at the matching x position on one baseline. Empty
// cells are skipped.
func (p *Page) Row(y, size float64, xs []float64, cells ...string) *Page {
	for i, c := range cells {
		if c == "" || i >= len(xs) {
			continue
		}
		p.Text(xs[i], y, size, c)
	}
	return p
}

// Rect fills a rectangle; thin ones act as ruling lines.
func (p *Page) Rect(x, y, w, h float64) *Page {
	p.ops = append(p.ops, fmt.Sprintf("%s %s %s %s re f", num(x), num(y), num(w), num(h)))
	return p
}

func (p *Page) HLine(x0, x1, y float64) *Page {
	return p.Rect(x0, y-0.25, x1-x0, 0.5)
}

func (p *Page) VLine(x, y0, y1 float64) *Page {
	return p.Rect(x-0.25, y0, 0.5, y1-y0)
}

// Grid rules a table whose column edges are xs and row edges are ys.
func (p *Page) Grid(xs, ys []float64) *Page {
	minX, maxX := xs[0], xs[len(xs)-1]
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, y := range ys {
		p.HLine(minX, maxX, y)
	}
	for _, x := range xs {
		p.VLine(x, minY, maxY)
	}
	return p
}

// Line strokes a half point wide line from (x0, y0) to (x1, y1).
func (p *Page) Line(x0, y0, x1, y1 float64) *Page {
	p.ops = append(p.ops, fmt.Sprintf("0.5 w %s %s m %s %s l S", num(x0), num(y0), num(x1), num(y1)))
	return p
}

// StrokedGrid rules the same table as Grid with stroked lines instead of
// filled rectangles.
func (p *Page) StrokedGrid(xs, ys []float64) *Page {
	minX, maxX := xs[0], xs[len(xs)-1]
	minY, maxY := ys[0], ys[0]
	for _, y := range ys {
		minY, maxY = min(minY, y), max(maxY, y)
	}
	for _, y := range ys {
		p.Line(minX, y, maxX, y)
	}
	for _, x := range xs {
		p.Line(x, minY, x, maxY)
	}
	return p
}

// Transformed runs draw with the current transformation matrix translated by
// (dx, dy), inside a q/Q pair.
func (p *Page) Transformed(dx, dy float64, draw func(*Page)) *Page {
	p.ops = append(p.ops, fmt.Sprintf("q 1 0 0 1 %s %s cm", num(dx), num(dy)))
	draw(p)
	p.ops = append(p.ops, "Q")
	return p
}

type Document struct {
	pages []*Page
}

func New() *Document {
	return &Document{}
}

func (d *Document) AddPage() *Page {
	p := &Page{}
	d.pages = append(d.pages, p)
	return p
}

// Bytes serializes the document with a valid cross-reference table.
func (d *Document) Bytes() []byte {
	// 1 catalog, 2 page tree, 3 font, then a page and a content stream per page.
	n := len(d.pages)
	objects := make([]string, 3+2*n)

	kids := make([]string, n)
	for i := range d.pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		widths = append(widths, fmt.Sprint(GlyphWidth))
	}

	objects[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
	objects[2] = fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))

	for i, p := range d.pages {
		pageObj, contentObj := 4+2*i, 5+2*i
		stream := strings.Join(p.ops, "\n")
		objects[pageObj-1] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentObj)
		objects[contentObj-1] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}
