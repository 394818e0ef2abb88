// Package acquisition builds the single image bundle a workflow submits,
// from either an uploaded file or a confirmed camera frame.
package acquisition

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

const (
	// MaxUploadSize matches the prediction server's request cap.
	MaxUploadSize = 16 * 1024 * 1024

	// CaptureQuality is the JPEG quality used for camera frames.
	CaptureQuality = 90

	// CaptureFilename is the name camera frames are submitted under.
	CaptureFilename = "captured-image.jpg"
)

// ErrReleased is returned when reading a session whose blob has been released.
var ErrReleased = errors.New("acquisition session released")

// ErrNoFile is returned when an upload carries no data.
var ErrNoFile = apperr.Validation("acquire", "no file selected")

// Session is one acquired image plus the processing options chosen for it.
// The blob is owned by the session until Release.
type Session struct {
	ID          string
	Source      models.Source
	Filename    string
	ContentType string
	Options     models.ProcessingOptions
	CreatedAt   time.Time

	mu       sync.Mutex
	blob     []byte
	released bool
}

// FromUpload validates an uploaded file and wraps it in a session. The
// content type is sniffed when the caller did not declare a useful one.
func FromUpload(filename, contentType string, data []byte, opts models.ProcessingOptions) (*Session, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	if len(data) > MaxUploadSize {
		return nil, apperr.Validation("acquire", "file too large (max %d MB)", MaxUploadSize/(1024*1024))
	}

	contentType = normalizeContentType(contentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = normalizeContentType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("acquire", "%q is not an image", contentType)
	}
	if filename == "" {
		filename = "upload" + extensionFor(contentType)
	}

	return newSession(models.SourceUpload, filename, contentType, data, opts), nil
}

// ReadUpload reads at most MaxUploadSize bytes from r and calls FromUpload.
func ReadUpload(r io.Reader, filename, contentType string, opts models.ProcessingOptions) (*Session, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return FromUpload(filename, contentType, data, opts)
}

// FromFrame encodes a captured frame as a JPEG still.
func FromFrame(frame image.Image, opts models.ProcessingOptions) (*Session, error) {
	if frame == nil {
		return nil, apperr.Validation("acquire", "no frame captured")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: CaptureQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return newSession(models.SourceCamera, CaptureFilename, "image/jpeg", buf.Bytes(), opts), nil
}

func newSession(src models.Source, filename, contentType string, data []byte, opts models.ProcessingOptions) *Session {
	return &Session{
		ID:          uuid.NewString(),
		Source:      src,
		Filename:    filename,
		ContentType: contentType,
		Options:     opts,
		CreatedAt:   time.Now(),
		blob:        data,
	}
}

// Blob returns the image bytes.
func (s *Session) Blob() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrReleased
	}
	return s.blob, nil
}

// Size returns the blob length, or 0 once released.
func (s *Session) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blob)
}

// Release drops the blob. Safe to call more than once.
func (s *Session) Release() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	s.released = true
}

// Released reports whether Release has been called.
func (s *Session) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
