package codec

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// TextExtractor implements tool.TextExtractor, dispatching to a
// format-specific reader by the file URI's extension.
type TextExtractor struct {
	Blobs BlobFetcher
}

// NewTextExtractor builds a TextExtractor reading blobs through blobs.
func NewTextExtractor(blobs BlobFetcher) *TextExtractor {
	return &TextExtractor{Blobs: blobs}
}

// ExtractText fetches the blob at fileURI and returns its plain text.
func (e *TextExtractor) ExtractText(ctx context.Context, fileURI string) (string, error) {
	content, err := e.Blobs.Get(ctx, fileURI)
	if err != nil {
		return "", fmt.Errorf("codec: fetch blob: %w", err)
	}

	switch {
	case strings.HasSuffix(strings.ToLower(fileURI), ".pdf"):
		return extractPDFText(content)
	case strings.HasSuffix(strings.ToLower(fileURI), ".docx"):
		return extractDocxText(content)
	default:
		// Treat anything else as already-plain-text, matching the
		// teacher's fallback of returning raw content when no structured
		// parser recognizes the extension.
		return string(content), nil
	}
}

// extractPDFText reads every page's plain text, following the
// teacher's pdf.NewReader + page.GetPlainText page-by-page loop.
func extractPDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("codec: open pdf: %w", err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			parts = append(parts, fmt.Sprintf("--- page %d (extraction failed: %v) ---", pageNum, err))
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// extractDocxText reads a .docx's text content. The library reads from
// a path, so the in-memory blob is staged to a temp file first.
func extractDocxText(content []byte) (string, error) {
	tmp, err := writeTempFile("lexframe-extract-*.docx", content)
	if err != nil {
		return "", err
	}
	defer removeTempFile(tmp)

	r, err := docx.ReadDocxFile(tmp)
	if err != nil {
		return "", fmt.Errorf("codec: open docx: %w", err)
	}
	defer r.Close()

	return r.Editable().GetContent(), nil
}
