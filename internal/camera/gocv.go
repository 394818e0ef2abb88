//go:build gocv

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// SystemDevice captures from OpenCV video devices. Facing modes map to
// device indexes since OpenCV cannot report which way a camera points.
type SystemDevice struct {
	EnvironmentIndex int
	UserIndex        int
}

// NewSystemDevice returns the OpenCV-backed device.
func NewSystemDevice(environmentIndex, userIndex int) Device {
	return &SystemDevice{EnvironmentIndex: environmentIndex, UserIndex: userIndex}
}

func (d *SystemDevice) VideoInputs(ctx context.Context) ([]DeviceInfo, error) {
	return nil, ErrEnumerationUnsupported
}

func (d *SystemDevice) Open(ctx context.Context, facing Facing) (Stream, error) {
	idx := d.EnvironmentIndex
	if facing == FacingUser {
		idx = d.UserIndex
	}
	vc, err := gocv.OpenVideoCapture(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to open video device %d: %w", idx, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("video device %d is not available", idx)
	}
	if err := ctx.Err(); err != nil {
		_ = vc.Close()
		return nil, err
	}
	return &gocvStream{vc: vc}, nil
}

type gocvStream struct {
	mu sync.Mutex
	vc *gocv.VideoCapture
}

func (s *gocvStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vc == nil {
		return nil, errors.New("stream closed")
	}
	mat := gocv.NewMat()
	defer mat.Close()
	if ok := s.vc.Read(&mat); !ok || mat.Empty() {
		return nil, errors.New("no frame available")
	}
	return mat.ToImage()
}

func (s *gocvStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vc == nil {
		return nil
	}
	err := s.vc.Close()
	s.vc = nil
	return err
}
