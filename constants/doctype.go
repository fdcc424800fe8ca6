package constants

import "strings"

// DocType identifies the family a PDF document belongs to.
type DocType string

const (
	DocTypeBankStatement DocType = "bank_statement"
	DocTypeAct           DocType = "act"
	DocTypeUnknown       DocType = "unknown"
)

// FileFormats holds the allowed file formats for import.
var FileFormats = []string{"PDF", "XLSX", "XLS"}

const (
	PDF  = "PDF"
	XLSX = "XLSX"
	XLS  = "XLS"
)

// AllowedExtensions holds the default allowed file extensions for import.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xlsm": {},
	"xls":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a file format, or "".
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "xlsx", "xlsm":
		return XLSX
	case "xls":
		return XLS
	default:
		return ""
	}
}
