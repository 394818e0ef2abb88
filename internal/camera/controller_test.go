package camera

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	facing Facing
	closed bool
	dev    *fakeDevice
}

func (s *fakeStream) Frame() (image.Image, error) {
	if s.dev.frameHook != nil {
		s.dev.frameHook()
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.RGBA{G: 200, A: 255})
	return img, nil
}

func (s *fakeStream) Close() error {
	s.dev.mu.Lock()
	defer s.dev.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.dev.live--
	}
	return nil
}

type fakeDevice struct {
	mu        sync.Mutex
	inputs    []DeviceInfo
	enumErr   error
	failFor   map[Facing]error
	live      int
	maxLive   int
	opened    []Facing
	openHook  func()
	frameHook func()
}

func (d *fakeDevice) VideoInputs(ctx context.Context) ([]DeviceInfo, error) {
	if d.enumErr != nil {
		return nil, d.enumErr
	}
	return d.inputs, nil
}

func (d *fakeDevice) Open(ctx context.Context, facing Facing) (Stream, error) {
	if d.openHook != nil {
		d.openHook()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = append(d.opened, facing)
	if err := d.failFor[facing]; err != nil {
		return nil, err
	}
	d.live++
	if d.live > d.maxLive {
		d.maxLive = d.live
	}
	return &fakeStream{facing: facing, dev: d}, nil
}

func (d *fakeDevice) liveStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

func twoCameras() *fakeDevice {
	return &fakeDevice{inputs: []DeviceInfo{{ID: "0", Label: "rear"}, {ID: "1", Label: "front"}}}
}

func TestOpenCaptureRetake(t *testing.T) {
	dev := twoCameras()
	c := NewController(dev, nil)
	ctx := context.Background()

	assert.Equal(t, Closed, c.State())
	assert.Equal(t, Controls{}, c.Controls())

	require.NoError(t, c.Open(ctx, FacingEnvironment))
	assert.Equal(t, Streaming, c.State())
	assert.Equal(t, Controls{CaptureEnabled: true, SwitchEnabled: true}, c.Controls())

	// open while streaming is a no-op
	require.NoError(t, c.Open(ctx, FacingUser))
	assert.Equal(t, []Facing{FacingEnvironment}, dev.opened)

	require.NoError(t, c.Capture())
	assert.Equal(t, Previewing, c.State())
	assert.NotNil(t, c.Preview())
	assert.Equal(t, Controls{}, c.Controls())

	err := c.Capture()
	assert.ErrorIs(t, err, apperr.ErrState)
	err = c.SwitchFacing(ctx)
	assert.ErrorIs(t, err, apperr.ErrState)

	require.NoError(t, c.Retake())
	assert.Equal(t, Streaming, c.State())
	assert.Nil(t, c.Preview())
	assert.True(t, c.Controls().CaptureEnabled)

	assert.ErrorIs(t, c.Retake(), apperr.ErrState)

	require.NoError(t, c.Close())
	assert.Equal(t, Closed, c.State())
	assert.Zero(t, dev.liveStreams())
	require.NoError(t, c.Close())
}

func TestOpenFailureStaysClosed(t *testing.T) {
	dev := &fakeDevice{failFor: map[Facing]error{FacingEnvironment: errors.New("permission denied")}}
	c := NewController(dev, nil)

	err := c.Open(context.Background(), FacingEnvironment)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrCamera)
	assert.Equal(t, Closed, c.State())
	assert.ErrorIs(t, c.Capture(), apperr.ErrState)
}

func TestCaptureReadsFrameWithoutLock(t *testing.T) {
	dev := twoCameras()
	reading := make(chan struct{})
	release := make(chan struct{})
	dev.frameHook = func() {
		close(reading)
		<-release
	}
	c := NewController(dev, nil)
	require.NoError(t, c.Open(context.Background(), FacingEnvironment))

	done := make(chan error, 1)
	go func() { done <- c.Capture() }()
	<-reading

	// a second capture is rejected while the first frame is being read
	assert.ErrorIs(t, c.Capture(), apperr.ErrState)
	assert.Equal(t, Streaming, c.State())
	assert.True(t, c.Controls().CaptureEnabled)

	require.NoError(t, c.Close())
	close(release)

	err := <-done
	assert.ErrorIs(t, err, apperr.ErrCamera)
	assert.Equal(t, Closed, c.State())
	assert.Nil(t, c.Preview())
}

func TestSwitchFacingReleasesBeforeOpening(t *testing.T) {
	dev := twoCameras()
	c := NewController(dev, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, FacingEnvironment))
	require.NoError(t, c.SwitchFacing(ctx))

	assert.Equal(t, FacingUser, c.Facing())
	assert.Equal(t, Streaming, c.State())
	assert.Equal(t, []Facing{FacingEnvironment, FacingUser}, dev.opened)
	assert.Equal(t, 1, dev.maxLive)
	assert.Equal(t, 1, dev.liveStreams())
	require.NoError(t, c.Close())
}

func TestSwitchFacingFailureFailsClosed(t *testing.T) {
	dev := twoCameras()
	dev.failFor = map[Facing]error{FacingUser: errors.New("no front camera")}
	c := NewController(dev, nil)
	ctx := context.Background()

	require.NoError(t, c.Open(ctx, FacingEnvironment))
	err := c.SwitchFacing(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrCameraSwitch)

	assert.Equal(t, Closed, c.State())
	assert.Zero(t, dev.liveStreams())
	assert.ErrorIs(t, c.Capture(), apperr.ErrState)

	dev.failFor = nil
	require.NoError(t, c.Open(ctx, FacingEnvironment))
	require.NoError(t, c.Capture())
	require.NoError(t, c.Close())
}

func TestSwitchControlDependsOnCameraCount(t *testing.T) {
	ctx := context.Background()

	single := &fakeDevice{inputs: []DeviceInfo{{ID: "0"}}}
	c := NewController(single, nil)
	require.NoError(t, c.Open(ctx, FacingEnvironment))
	assert.Equal(t, Controls{CaptureEnabled: true}, c.Controls())
	require.NoError(t, c.Close())

	unknown := &fakeDevice{enumErr: ErrEnumerationUnsupported}
	c = NewController(unknown, nil)
	require.NoError(t, c.Open(ctx, FacingEnvironment))
	assert.Equal(t, Controls{CaptureEnabled: true, SwitchEnabled: true}, c.Controls())
	require.NoError(t, c.Close())
}

func TestCloseWhileOpeningDiscardsLateStream(t *testing.T) {
	dev := twoCameras()
	c := NewController(dev, nil)
	dev.openHook = func() {
		assert.Equal(t, Opening, c.State())
		require.NoError(t, c.Close())
	}

	err := c.Open(context.Background(), FacingEnvironment)
	require.Error(t, err)
	assert.Equal(t, Closed, c.State())
	assert.Zero(t, dev.liveStreams())
}

func TestConfirm(t *testing.T) {
	dev := twoCameras()
	c := NewController(dev, nil)
	c.MaxFrameDimension = 16
	ctx := context.Background()

	_, err := c.Confirm(models.ProcessingOptions{})
	assert.ErrorIs(t, err, apperr.ErrState)

	require.NoError(t, c.Open(ctx, FacingEnvironment))
	require.NoError(t, c.Capture())

	s, err := c.Confirm(models.ProcessingOptions{EnhanceContrast: true})
	require.NoError(t, err)
	assert.Equal(t, models.SourceCamera, s.Source)
	assert.Equal(t, "captured-image.jpg", s.Filename)
	assert.True(t, s.Options.EnhanceContrast)
	assert.Equal(t, Previewing, c.State())
	require.NoError(t, c.Close())
}

func TestNoCameraBackend(t *testing.T) {
	c := NewController(NewSystemDevice(0, 1), nil)
	err := c.Open(context.Background(), FacingEnvironment)
	if err != nil {
		assert.ErrorIs(t, err, apperr.ErrCamera)
		assert.Equal(t, Closed, c.State())
	}
	require.NoError(t, c.Close())
}

func TestParseFacing(t *testing.T) {
	for in, want := range map[string]Facing{"": FacingEnvironment, "rear": FacingEnvironment, "front": FacingUser, "user": FacingUser} {
		got, err := ParseFacing(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFacing("sideways")
	assert.Error(t, err)
	assert.Equal(t, FacingUser, FacingEnvironment.Opposite())
}
