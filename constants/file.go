package constants

import "strings"

// MimeClass is the coarse document class the pipeline knows how to handle.
type MimeClass string

const (
	PDF         MimeClass = "PDF"
	DOCX        MimeClass = "DOCX"
	XLSX        MimeClass = "XLSX"
	Unsupported MimeClass = ""
)

// Canonical MIME strings for the supported classes.
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToClass maps a file extension to its mime class.
func MapExtToClass(ext string) MimeClass {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "xlsx":
		return XLSX
	default:
		return Unsupported
	}
}

// MapMimeToClass maps a full MIME string to its mime class.
func MapMimeToClass(mime string) MimeClass {
	// strip parameters like "; charset=..."
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	switch strings.TrimSpace(mime) {
	case MimePDF:
		return PDF
	case MimeDOCX:
		return DOCX
	case MimeXLSX:
		return XLSX
	default:
		return Unsupported
	}
}

// ContentType returns the canonical MIME string for a class.
func (m MimeClass) ContentType() string {
	switch m {
	case PDF:
		return MimePDF
	case DOCX:
		return MimeDOCX
	case XLSX:
		return MimeXLSX
	default:
		return "application/octet-stream"
	}
}
