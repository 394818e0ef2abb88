package providers

import (
	"context"
	"strings"
)

// Config represents one vision request to an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string

	// Image is sent alongside the prompt when set.
	Image     []byte
	ImageMIME string
}

// ImageFormat returns the subtype of ImageMIME, e.g. "jpeg" for image/jpeg.
func (c Config) ImageFormat() string {
	mime := c.ImageMIME
	if mime == "" {
		return "jpeg"
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimPrefix(strings.TrimSpace(mime), "image/")
}

// Provider defines the interface for a vision-capable LLM provider
type Provider interface {
	Generate(ctx context.Context, config Config) (string, error)
}
