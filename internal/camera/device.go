// Package camera owns the live capture device: opening a stream for a
// facing mode, switching between cameras, and taking a still for preview.
package camera

import (
	"context"
	"errors"
	"image"
)

// Facing selects the front or rear camera.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Opposite returns the other facing mode.
func (f Facing) Opposite() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// ParseFacing accepts "environment"/"rear"/"back" and "user"/"front".
func ParseFacing(s string) (Facing, error) {
	switch s {
	case "", "environment", "rear", "back":
		return FacingEnvironment, nil
	case "user", "front":
		return FacingUser, nil
	default:
		return "", errors.New("unknown facing mode " + s)
	}
}

var (
	// ErrEnumerationUnsupported means the backend cannot list devices. It is
	// not fatal to opening a stream.
	ErrEnumerationUnsupported = errors.New("video input enumeration not supported")

	// ErrUnsupported means the binary was built without a camera backend.
	ErrUnsupported = errors.New("camera support not compiled in (build with -tags gocv)")
)

// DeviceInfo describes one video input.
type DeviceInfo struct {
	ID    string
	Label string
}

// Device opens streams on a capture backend.
type Device interface {
	VideoInputs(ctx context.Context) ([]DeviceInfo, error)
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream is a live video source. Close releases the hardware.
type Stream interface {
	Frame() (image.Image, error)
	Close() error
}
