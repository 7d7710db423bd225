package constants

import "strings"

// Format is the coarse document classification used for routing and the
// format column in processing_job.
type Format string

const (
	PDF         Format = "PDF"
	IMAGE       Format = "IMAGE"
	TEXT        Format = "TEXT"
	SPREADSHEET Format = "SPREADSHEET"
	WORD        Format = "WORD"
	HTML        Format = "HTML"
	ARCHIVE     Format = "ARCHIVE"
)

// MediaTypePDF is the only media type the escalation policy cares about.
const MediaTypePDF = "application/pdf"

// mediaTypeFormats maps detected media types to a coarse Format.
// Anything not listed is rejected as unsupported.
var mediaTypeFormats = map[string]Format{
	"application/pdf": PDF,
	"image/png":       IMAGE,
	"image/jpeg":      IMAGE,
	"image/tiff":      IMAGE,
	"image/bmp":       IMAGE,
	"image/webp":      IMAGE,
	"text/plain":      TEXT,
	"text/csv":        TEXT,
	"text/html":       HTML,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": SPREADSHEET,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": WORD,
	"application/zip": ARCHIVE,
}

// MapMediaTypeToFormat returns the Format for a sniffed media type,
// or "" when the type is not recognized.
func MapMediaTypeToFormat(mediaType string) Format {
	// strip parameters, e.g. "text/plain; charset=utf-8"
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return mediaTypeFormats[strings.TrimSpace(strings.ToLower(mediaType))]
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExtensions holds the default file extensions matched by the batch walker.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"txt":  {},
	"csv":  {},
	"html": {},
	"xlsx": {},
	"docx": {},
	"zip":  {},
}
