// Package extract turns validated files into plain text, one adapter per
// supported mime class. New formats are added by registering an adapter,
// not by branching inside the registry.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/common"
	"github.com/apphelix/engagement-tracker/internal/validate"
)

// ExtractedText is owned exclusively by the pipeline call that produced it.
type ExtractedText struct {
	Text        string              `json:"text"`
	SourceMime  constants.MimeClass `json:"source_mime"`
	ExtractedAt time.Time           `json:"extracted_at"`
}

// Adapter extracts plain text from one file format.
type Adapter interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Registry dispatches extraction by mime class.
type Registry struct {
	adapters map[constants.MimeClass]Adapter
	logger   *slog.Logger
}

// NewRegistry returns a registry with the three standard adapters wired.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{adapters: make(map[constants.MimeClass]Adapter), logger: logger}
	r.Register(constants.PDF, &PDFAdapter{})
	r.Register(constants.DOCX, &DOCXAdapter{})
	r.Register(constants.XLSX, &XLSXAdapter{})
	return r
}

// Register installs an adapter for a mime class, replacing any existing one.
func (r *Registry) Register(class constants.MimeClass, a Adapter) {
	r.adapters[class] = a
}

// Extract requires a prior successful validation; calling it with an invalid
// result is a contract violation, not an extraction failure.
func (r *Registry) Extract(ctx context.Context, v validate.Result) (ExtractedText, error) {
	if !v.Valid {
		return ExtractedText{}, common.NewAppError("PRECONDITION",
			"extract called with an invalid validation result", common.ErrPrecondition)
	}
	adapter, ok := r.adapters[v.Mime]
	if !ok {
		return ExtractedText{}, common.NewAppError("PRECONDITION",
			fmt.Sprintf("no adapter registered for mime class %q", v.Mime), common.ErrPrecondition)
	}

	start := time.Now()
	text, err := adapter.Extract(ctx, v.Path)
	if err != nil {
		r.logger.Error("extract.failed", "path", v.Path, "mime_class", v.Mime, "error", err)
		return ExtractedText{}, common.NewAppError("EXTRACTION_FAILED",
			fmt.Sprintf("%s extraction: %v", v.Mime, err), common.ErrExtractionFailed)
	}

	r.logger.Info("extract.ok",
		"path", v.Path,
		"mime_class", v.Mime,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ExtractedText{Text: text, SourceMime: v.Mime, ExtractedAt: time.Now().UTC()}, nil
}
