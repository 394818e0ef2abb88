package dataset

import (
	"path/filepath"
	"strings"
)

// Sample is one labeled leaf image
type Sample struct {
	// Path is the image file. Relative paths in a manifest resolve against
	// the manifest's directory.
	Path  string `json:"path" parquet:"path"`
	Label string `json:"label" parquet:"label"` // classifier label, e.g. Tomato__leaf_mold
}

// ID returns a stable identifier for reports: the label directory plus the
// file name.
func (s Sample) ID() string {
	return filepath.ToSlash(filepath.Join(s.Label, filepath.Base(s.Path)))
}

// ContentType guesses the image MIME type from the file extension.
func (s Sample) ContentType() string {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// isImage matches the extensions the dataset split script collects.
func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
