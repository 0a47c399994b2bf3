package ui

import (
	"path/filepath"
	"strings"
)

var iconsByExtension = map[string]string{
	"pdf":  "📕",
	"doc":  "📘",
	"docx": "📘",
	"txt":  "📄",
	"md":   "📄",
	"csv":  "📊",
	"xls":  "📊",
	"xlsx": "📊",
	"ppt":  "📙",
	"pptx": "📙",
	"zip":  "🗜",
	"tar":  "🗜",
	"gz":   "🗜",
	"json": "🧾",
	"html": "🌐",
}

var iconsByPrimaryType = map[string]string{
	"image":       "🖼",
	"video":       "🎞",
	"audio":       "🎵",
	"text":        "📄",
	"application": "📦",
}

// IconDefault is used when neither extension nor type is known
const IconDefault = "📁"

// FileIcon picks an icon from the file extension, falling back to the
// primary mime type
func FileIcon(name, mimeType string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if icon, ok := iconsByExtension[ext]; ok {
		return icon
	}

	primary, _, _ := strings.Cut(mimeType, "/")
	if icon, ok := iconsByPrimaryType[primary]; ok {
		return icon
	}
	return IconDefault
}
