// Package validate classifies and sanity-checks incoming files before any
// parsing is attempted. Checks are ordered cheapest-first so bad input is
// rejected before expensive full-text extraction.
package validate

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/apphelix/engagement-tracker/constants"
	"github.com/apphelix/engagement-tracker/internal/common"
)

// DefaultMaxFileBytes is the hard ceiling applied when none is configured.
const DefaultMaxFileBytes = 50 * 1024 * 1024

// Result is the outcome of validating one file. Produced once per file and
// never persisted beyond the pipeline invocation.
type Result struct {
	Valid     bool                `json:"valid"`
	Mime      constants.MimeClass `json:"mime_class"`
	SizeBytes int64               `json:"size_bytes"`
	Path      string              `json:"-"`
	Err       error               `json:"error,omitempty"`
}

type Validator struct {
	maxBytes int64
	logger   *slog.Logger
}

func NewValidator(maxBytes int64, logger *slog.Logger) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{maxBytes: maxBytes, logger: logger}
}

// Validate checks size, MIME class, and container structure. Read-only.
func (v *Validator) Validate(path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return invalid(constants.Unsupported, 0, path,
			common.NewAppError("UNKNOWN_TYPE", fmt.Sprintf("cannot stat %q", path), common.ErrUnknownType))
	}
	size := info.Size()

	// Size ceiling is a hard reject, checked before anything else.
	if size > v.maxBytes {
		return invalid(constants.Unsupported, size, path,
			common.NewAppError("SIZE_EXCEEDED",
				fmt.Sprintf("file is %d bytes, limit is %d", size, v.maxBytes), common.ErrSizeExceeded))
	}

	class, err := v.classify(path)
	if err != nil {
		return invalid(constants.Unsupported, size, path, err)
	}

	if err := v.probe(path, class); err != nil {
		return invalid(class, size, path, err)
	}

	v.logger.Debug("validate.ok", "path", path, "mime_class", class, "size_bytes", size)
	return Result{Valid: true, Mime: class, SizeBytes: size, Path: path}
}

// classify determines the mime class from file contents, falling back to the
// extension when sniffing is inconclusive (e.g. a bare OOXML zip).
func (v *Validator) classify(path string) (constants.MimeClass, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return constants.Unsupported,
			common.NewAppError("UNKNOWN_TYPE", "cannot read file for type detection", common.ErrUnknownType)
	}

	if class := constants.MapMimeToClass(mtype.String()); class != constants.Unsupported {
		return class, nil
	}
	if class := constants.MapExtToClass(filepath.Ext(path)); class != constants.Unsupported {
		return class, nil
	}

	detected := mtype.String()
	if detected == "" || detected == "application/octet-stream" {
		return constants.Unsupported,
			common.NewAppError("UNKNOWN_TYPE",
				fmt.Sprintf("could not determine MIME type for %q", filepath.Base(path)), common.ErrUnknownType)
	}
	return constants.Unsupported,
		common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("unsupported file type: %s", detected), common.ErrUnsupportedType)
}

// probe opens the container format without a full parse to catch corruption early.
func (v *Validator) probe(path string, class constants.MimeClass) (err error) {
	switch class {
	case constants.PDF:
		return v.probePDF(path)
	case constants.DOCX:
		return v.probeOOXML(path, class, "word/document.xml")
	case constants.XLSX:
		return v.probeOOXML(path, class, "xl/workbook.xml")
	default:
		return common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("no probe for class %q", class), common.ErrUnsupportedType)
	}
}

func (v *Validator) probePDF(path string) (err error) {
	// The pdf package can panic on malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			err = corrupt(constants.PDF, fmt.Sprintf("pdf probe panic: %v", r))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return corrupt(constants.PDF, err.Error())
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			v.logger.Warn("validate.probe.close_error", "path", path, "error", cerr)
		}
	}()
	if r.NumPage() < 0 {
		return corrupt(constants.PDF, "negative page count")
	}
	return nil
}

func (v *Validator) probeOOXML(path string, class constants.MimeClass, requiredPart string) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return corrupt(class, err.Error())
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			v.logger.Warn("validate.probe.close_error", "path", path, "error", cerr)
		}
	}()

	for _, zf := range zr.File {
		if zf.Name == requiredPart {
			return nil
		}
	}
	return corrupt(class, fmt.Sprintf("missing container part %s", requiredPart))
}

func corrupt(class constants.MimeClass, detail string) error {
	return common.NewAppError("CORRUPT_FILE",
		fmt.Sprintf("invalid %s file: %s", class, detail), common.ErrCorruptFile)
}

func invalid(class constants.MimeClass, size int64, path string, err error) Result {
	return Result{Valid: false, Mime: class, SizeBytes: size, Path: path, Err: err}
}
