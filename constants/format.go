package constants

import "strings"

// Format is the coarse input family the pipeline routes on.
type Format string

// Stable values (stored in job status rows).
const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
	TEXT  Format = "TEXT"
	WORD  Format = "WORD"
)

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
	"doc":  {},
	"docx": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapMimeToFormat maps a MIME type to a pipeline format.
// Returns "" for anything the pipeline cannot process.
func MapMimeToFormat(mimeType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	// strip parameters like "; charset=utf-8"
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/pdf":
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	case strings.HasPrefix(mt, "text/"):
		return TEXT
	case mt == "application/msword",
		mt == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return WORD
	}
	return ""
}

// MapExtToFormat maps a normalized extension to a pipeline format.
// Used by directory ingestion where no MIME type is available.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "tif", "tiff":
		return IMAGE
	case "txt", "md", "html":
		return TEXT
	case "doc", "docx":
		return WORD
	}
	return ""
}

// MimeTypeForExt returns the canonical MIME type for a normalized extension,
// falling back to application/octet-stream.
func MimeTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	case "txt":
		return "text/plain"
	case "md":
		return "text/markdown"
	case "html":
		return "text/html"
	case "doc":
		return "application/msword"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}
