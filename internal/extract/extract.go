// Package extract turns uploaded document files into splittable text,
// keyed by a document-kind tag derived from the file extension.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Kind tags the document format handed to the ingestion pipeline.
type Kind string

const (
	KindPDF  Kind = "pdf_file"
	KindText Kind = "text_file"
	KindDocx Kind = "docx"
)

// KindForExtension maps a file extension (with leading dot) to a document
// kind. The match is case-insensitive and unknown extensions fall back to
// plain text rather than being rejected.
func KindForExtension(ext string) Kind {
	switch strings.ToLower(ext) {
	case ".pdf":
		return KindPDF
	case ".txt":
		return KindText
	case ".docx":
		return KindDocx
	default:
		return KindText
	}
}

// Chunks loads the file at path according to its kind and splits it into
// retrievable chunks.
func Chunks(ctx context.Context, path string, kind Kind, splitter textsplitter.TextSplitter) ([]schema.Document, error) {
	switch kind {
	case KindPDF:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		return documentloaders.NewPDF(f, info.Size()).LoadAndSplit(ctx, splitter)

	case KindDocx:
		text, err := docxText(path)
		if err != nil {
			return nil, fmt.Errorf("extracting docx %s: %w", path, err)
		}
		return documentloaders.NewText(strings.NewReader(text)).LoadAndSplit(ctx, splitter)

	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return documentloaders.NewText(f).LoadAndSplit(ctx, splitter)
	}
}
