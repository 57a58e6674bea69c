package engine

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps file extensions to the MIME types accepted by the engine's
// file API.
var mimeTypes = map[string]string{
	// Documents
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".txt":  "text/plain",
	".rtf":  "application/rtf",

	// Spreadsheets
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv",

	// Presentations
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".ppt":  "application/vnd.ms-powerpoint",

	// Data formats
	".json": "application/json",
	".xml":  "application/xml",
	".html": "text/html",
	".md":   "text/markdown",
}

// MIMETypeFor returns the MIME type for a file path based on its extension,
// defaulting to application/octet-stream.
func MIMETypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}
