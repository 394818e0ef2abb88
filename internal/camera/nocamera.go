//go:build !gocv

package camera

import "context"

type unsupportedDevice struct{}

// NewSystemDevice returns a device that cannot open streams. Build with
// -tags gocv for OpenCV capture.
func NewSystemDevice(environmentIndex, userIndex int) Device {
	return unsupportedDevice{}
}

func (unsupportedDevice) VideoInputs(ctx context.Context) ([]DeviceInfo, error) {
	return nil, ErrEnumerationUnsupported
}

func (unsupportedDevice) Open(ctx context.Context, facing Facing) (Stream, error) {
	return nil, ErrUnsupported
}
