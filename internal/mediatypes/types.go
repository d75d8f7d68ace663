package mediatypes

import (
	"path/filepath"
	"strings"
)

// ImageExtensions is the fixed allow-list of image extensions the scanner accepts.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".heic": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
	".gif":  true,
}

// MimeTypes maps image extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
}

// NormalizeExt returns the lowercased extension of name including the leading dot.
func NormalizeExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsImage reports whether the file name has an allow-listed image extension.
// Matching is case-insensitive.
func IsImage(name string) bool {
	return ImageExtensions[NormalizeExt(name)]
}
