package infra

// pdftext.go: plain-text extraction for supplier price lists (ledongthuc/pdf).
// Each text row of a page becomes one line; glyph runs separated by a visible
// horizontal gap are joined with a space.

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTexto extracts text lines from PDF documents.
type PDFTexto struct{}

func NewPDFTexto() *PDFTexto { return &PDFTexto{} }

// Lineas returns the text rows of every page, top to bottom, pages in order.
// A blank line separates pages so that names never span a page break.
func (PDFTexto) Lineas(data []byte) (lineas []string, err error) {
	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf: documento ilegible: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf: abrir documento: %w", err)
	}

	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("pdf: página %d: %w", i, err)
		}
		for _, row := range rows {
			lineas = append(lineas, unirFila(row.Content))
		}
		lineas = append(lineas, "")
	}
	return lineas, nil
}

func unirFila(textos pdf.TextHorizontal) string {
	var b strings.Builder
	var finPrevio float64
	for i, t := range textos {
		if i > 0 && t.X-finPrevio > t.FontSize*0.15 && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		finPrevio = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}
