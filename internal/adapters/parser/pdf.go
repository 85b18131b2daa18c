// Package parser provides PDF inspection adapters.
// Adapter implementing ports.DocumentInspector on top of ledongthuc/pdf.
package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFInspector implements ports.DocumentInspector.
type PDFInspector struct{}

// NewPDFInspector creates a new PDF inspector.
func NewPDFInspector() *PDFInspector {
	return &PDFInspector{}
}

// PageCount opens the PDF and returns its page count. Encrypted or damaged
// files fail here, which callers surface as a warning only.
func (p *PDFInspector) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}

// ExtractText returns the plain text of every readable page.
func ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("creating PDF reader: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from PDF")
	}
	return text, nil
}

// Chunk splits text into overlapping pieces of at most chunkSize bytes,
// breaking at word boundaries where it can. One vector is stored per chunk.
func Chunk(text string, chunkSize, chunkOverlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 50
	}
	content := strings.TrimSpace(text)
	if len(content) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(content) {
		end := start + chunkSize
		if end > len(content) {
			end = len(content)
		}

		// Try to break at word boundary
		if end < len(content) {
			if lastSpace := strings.LastIndex(content[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		if piece := strings.TrimSpace(content[start:end]); len(piece) > 0 {
			chunks = append(chunks, piece)
		}
		if end >= len(content) {
			break
		}

		next := end - chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// CountChunks reports how many chunks Chunk would produce.
func CountChunks(text string, chunkSize, chunkOverlap int) int {
	return len(Chunk(text, chunkSize, chunkOverlap))
}
