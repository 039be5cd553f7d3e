package document

import (
	"TUI_channel_research/internal/core/ports"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type pdfReader struct {
	log ports.LoggerPort
}

func NewPDFReader(logger ports.LoggerPort) ports.DocumentReaderPort {
	return &pdfReader{log: logger}
}

// ReadText returns the plain text of every page, one page per paragraph.
// Pages without a content stream are skipped.
func (r *pdfReader) ReadText(ctx context.Context, path string) (string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	pages := doc.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read page %d of %s: %w", i, path, err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	r.log.Debug(fmt.Sprintf("Read %d pages from %s", pages, path))

	return b.String(), nil
}
