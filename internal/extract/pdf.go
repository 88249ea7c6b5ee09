package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFAdapter concatenates per-page text in page order. Pages that yield no
// text (e.g. scanned images) contribute nothing; the core does not OCR.
type PDFAdapter struct{}

func (a *PDFAdapter) Extract(ctx context.Context, path string) (text string, err error) {
	// The pdf package panics on some malformed inputs; surface those as errors.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			// Undecodable pages behave like empty ones.
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
