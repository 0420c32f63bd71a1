package common

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// SelectPages resolves a page selection such as "3", "1,3-4" or "all" against
// the document's page count. Pages beyond the end are ignored.
func (d *Document) SelectPages(selection string) ([]int, error) {
	return SelectPages(selection, d.NumPage())
}

func SelectPages(selection string, pageCount int) ([]int, error) {
	selection = strings.TrimSpace(selection)

	var parsed []string
	if selection != "" && !strings.EqualFold(selection, "all") {
		var err error
		parsed, err = api.ParsePageSelection(selection)
		if err != nil {
			return nil, fmt.Errorf("invalid page selection %q: %w", selection, err)
		}
	}

	set, err := api.PagesForPageSelection(pageCount, parsed, true, false)
	if err != nil {
		return nil, fmt.Errorf("invalid page selection %q: %w", selection, err)
	}

	pages := make([]int, 0, len(set))
	for p, ok := range set {
		if ok && p >= 1 && p <= pageCount {
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages, nil
}
