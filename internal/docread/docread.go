// Package docread reads source documents into page content for extraction.
// It is the boundary with the binary document format: everything past this
// package works on plain lines or positioned words.
package docread

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nkmathur/partsrecon/constants"
	"github.com/nkmathur/partsrecon/internal/entity"
)

// PageContent is the raw content of one page. PDF pages carry positioned
// words; plain-text sources carry lines. Exactly one of the two is set.
type PageContent struct {
	Lines []string
	Words []entity.Word
}

// Document is the read result for one source file.
type Document struct {
	Format   string // constants.PDF | constants.TXT
	Pages    []PageContent
	Duration time.Duration
}

type Config struct {
	MaxPages int // 0 = no limit
}

// Reader picks a strategy based on file extension.
type Reader struct {
	cfg    Config
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{cfg: cfg, logger: logger}
}

// Read loads the document at path. Resources opened for the read are
// released before returning, on success and on error alike.
func (r *Reader) Read(ctx context.Context, path string) (Document, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	r.logger.Debug("docread.start", "path", path, "ext", ext, "format", format)

	var (
		doc Document
		err error
	)
	switch format {
	case constants.PDF:
		doc, err = r.readPDF(ctx, path)
	case constants.TXT:
		doc, err = r.readText(ctx, path)
	default:
		return Document{}, fmt.Errorf("unsupported format: %q", ext)
	}
	if err != nil {
		r.logger.Error("docread.failed", "path", path, "error", err)
		return Document{}, err
	}
	doc.Duration = time.Since(start)
	r.logger.Info("docread.ok",
		"path", path, "format", doc.Format,
		"pages", len(doc.Pages), "elapsed_ms", doc.Duration.Milliseconds(),
	)
	return doc, nil
}
