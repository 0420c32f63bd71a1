package common

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtx/extractor/tables"
	"github.com/dslipak/pdf"
)

// Document is one parsed PDF. It is not safe for concurrent use; every
// request opens its own.
type Document struct {
	Name     string
	Checksum string

	reader   *pdf.Reader
	numPages int
	pages    map[int]tables.PageContent
}

// OpenDocument parses PDF bytes held in memory.
func OpenDocument(data []byte, name string) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var numPages int
	if err := recoverPDF(func() { numPages = r.NumPage() }); err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	sum := sha256.Sum256(data)
	return &Document{
		Name:     name,
		Checksum: hex.EncodeToString(sum[:]),
		reader:   r,
		numPages: numPages,
		pages:    map[int]tables.PageContent{},
	}, nil
}

// recoverPDF runs fn and returns a panic raised while the pdf package
// resolves objects as an error.
func recoverPDF(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	fn()
	return nil
}

// ReadDocument buffers a reader and parses it. The buffer lives only as long
// as the returned Document.
func ReadDocument(reader io.Reader, name string) (*Document, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return OpenDocument(buf.Bytes(), name)
}

// OpenDocumentFile reads and parses the PDF at path.
func OpenDocumentFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadDocument(file, path)
}

// Source is the document name without directory or extension.
func (d *Document) Source() string {
	return strings.TrimSuffix(filepath.Base(d.Name), filepath.Ext(d.Name))
}

func (d *Document) NumPage() int {
	return d.numPages
}

// Page returns the content of page n (1-based).
func (d *Document) Page(n int) (tables.PageContent, error) {
	if pc, ok := d.pages[n]; ok {
		return pc, nil
	}
	if n < 1 || n > d.NumPage() {
		return tables.PageContent{}, fmt.Errorf("page %d out of range (1-%d)", n, d.NumPage())
	}
	var page pdf.Page
	if err := recoverPDF(func() { page = d.reader.Page(n) }); err != nil {
		return tables.PageContent{}, fmt.Errorf("page %d: %w", n, err)
	}
	pc, err := tables.ReadPage(page)
	if err != nil {
		return tables.PageContent{}, fmt.Errorf("page %d: %w", n, err)
	}
	d.pages[n] = pc
	return pc, nil
}

// Text is the text of every page, top to bottom, one line per row of text.
func (d *Document) Text() (string, error) {
	numPages := d.NumPage()
	pages := make([]string, 0, numPages)
	for no := 1; no <= numPages; no++ {
		pc, err := d.Page(no)
		if err != nil {
			return "", err
		}
		if text := pc.Text(); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}
