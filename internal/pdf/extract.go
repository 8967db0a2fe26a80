package pdf

import (
	"fmt"
	"strings"

	"github.com/docvault-io/docvault/internal/service"
	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of PDF files page by page.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPages reads the PDF at path and returns one entry per page that
// carries extractable text. Page numbers are 1-based; pages without text
// (scanned images, blank pages) are omitted.
func (e *Extractor) ExtractPages(path string) ([]service.PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]service.PageText, 0, total)

	for num := 1; num <= total; num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, service.PageText{Page: num, Text: text})
	}

	return pages, nil
}
