package evidence

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrNotPDF          = errors.New("document is not a pdf")
	ErrPageOutOfRange  = errors.New("page out of range")
	errEmptyPDFPayload = errors.New("empty pdf data")
)

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	r, err := openPDF(data)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// ExtractPageText returns the plain text of one 1-indexed page and the page
// count of the document.
func ExtractPageText(data []byte, page int) (string, int, error) {
	r, err := openPDF(data)
	if err != nil {
		return "", 0, err
	}
	total := r.NumPage()
	if page < 1 || page > total {
		return "", total, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page, total)
	}
	p := r.Page(page)
	if p.V.IsNull() {
		return "", total, fmt.Errorf("%w: page %d missing", ErrPageOutOfRange, page)
	}
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return "", total, fmt.Errorf("extract page %d: %w", page, err)
	}
	return strings.TrimSpace(text), total, nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	if len(data) == 0 {
		return nil, errEmptyPDFPayload
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	return r, nil
}
