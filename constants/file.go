package constants

import "strings"

// Document formats the reader understands.
const (
	PDF = "PDF"
	TXT = "TXT"
)

// AllowedExtensions holds the file extensions accepted for comparison input.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a document format.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
