// Package pdftext converts paged PDF documents into normalized plain text.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/lunalabs/intakeflow/internal/domain"
)

// Extract parses data as a paged document and returns the per-page text
// joined with newlines, with trailing whitespace trimmed. Pages without
// extractable text contribute nothing. Bytes that cannot be opened as a
// document fail with ErrExtractFailed.
func Extract(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open document: %v: %w", err, domain.ErrExtractFailed)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %v: %w", i+1, err, domain.ErrExtractFailed)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.TrimRight(strings.Join(pages, "\n"), " \t\r\n"), nil
}
