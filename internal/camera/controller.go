package camera

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// State is the controller's lifecycle state.
type State int

const (
	Closed State = iota
	Opening
	Streaming
	Previewing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Streaming:
		return "streaming"
	case Previewing:
		return "previewing"
	default:
		return "unknown"
	}
}

// Controls reports which user controls are enabled.
type Controls struct {
	CaptureEnabled bool `json:"capture_enabled"`
	SwitchEnabled  bool `json:"switch_enabled"`
}

// Controller holds at most one live stream. A preview frame exists only in
// the Previewing state.
type Controller struct {
	dev    Device
	logger *slog.Logger

	// MaxFrameDimension bounds confirmed frames; 0 keeps full resolution.
	MaxFrameDimension int

	mu         sync.Mutex
	state      State
	facing     Facing
	stream     Stream
	preview    image.Image
	cameras    int
	enumerated bool
	generation uint64
	capturing  bool
}

// NewController returns a closed controller for dev.
func NewController(dev Device, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{dev: dev, logger: logger, facing: FacingEnvironment}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Facing returns the last requested facing mode.
func (c *Controller) Facing() Facing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facing
}

// Controls reports whether capture and switch are currently usable.
func (c *Controller) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	streaming := c.state == Streaming
	return Controls{
		CaptureEnabled: streaming,
		SwitchEnabled:  streaming && (!c.enumerated || c.cameras > 1),
	}
}

// Open starts a stream for facing. It is a no-op when a stream is already live.
func (c *Controller) Open(ctx context.Context, facing Facing) error {
	c.mu.Lock()
	switch c.state {
	case Streaming, Previewing:
		c.mu.Unlock()
		return nil
	case Opening:
		c.mu.Unlock()
		return apperr.New(apperr.KindState, "camera open", "camera is already opening")
	}
	c.state = Opening
	c.facing = facing
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.enumerate(ctx, gen)

	if err := c.start(ctx, gen, facing); err != nil {
		return apperr.Wrap(apperr.KindCamera, "camera open", err)
	}
	return nil
}

// SwitchFacing releases the live stream and opens the opposite camera. On
// failure the controller is left Closed with no stream.
func (c *Controller) SwitchFacing(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Streaming {
		state := c.state
		c.mu.Unlock()
		return apperr.New(apperr.KindState, "camera switch", "cannot switch camera while %s", state)
	}
	old := c.stream
	c.stream = nil
	c.state = Opening
	c.facing = c.facing.Opposite()
	facing := c.facing
	c.generation++
	c.capturing = false
	gen := c.generation
	c.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			c.logger.Warn("Failed to release camera stream", "err", err)
		}
	}

	if err := c.start(ctx, gen, facing); err != nil {
		return apperr.Wrap(apperr.KindCameraSwitch, "camera switch", err)
	}
	return nil
}

// start opens a stream and installs it if gen is still current.
func (c *Controller) start(ctx context.Context, gen uint64, facing Facing) error {
	stream, err := c.dev.Open(ctx, facing)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		if stream != nil {
			_ = stream.Close()
		}
		return errors.New("camera closed while opening")
	}
	if err != nil {
		c.state = Closed
		c.mu.Unlock()
		c.logger.Error("Failed to open camera", "facing", facing, "err", err)
		return err
	}
	c.stream = stream
	c.state = Streaming
	c.mu.Unlock()

	c.logger.Debug("Camera streaming", "facing", facing)
	return nil
}

func (c *Controller) enumerate(ctx context.Context, gen uint64) {
	inputs, err := c.dev.VideoInputs(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		if !errors.Is(err, ErrEnumerationUnsupported) {
			c.logger.Debug("Unable to enumerate cameras", "err", err)
		}
		c.enumerated = false
		return
	}
	c.enumerated = true
	c.cameras = len(inputs)
}

// Capture snapshots the current frame and enters Previewing. The frame is
// read without holding the lock; a Close or switch during the read discards it.
func (c *Controller) Capture() error {
	c.mu.Lock()
	if c.state != Streaming || c.stream == nil {
		state := c.state
		c.mu.Unlock()
		return apperr.New(apperr.KindState, "camera capture", "cannot capture while %s", state)
	}
	if c.capturing {
		c.mu.Unlock()
		return apperr.New(apperr.KindState, "camera capture", "capture already in progress")
	}
	c.capturing = true
	stream := c.stream
	gen := c.generation
	c.mu.Unlock()

	frame, err := stream.Frame()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation {
		c.capturing = false
	}
	if err != nil {
		return apperr.Wrap(apperr.KindCamera, "camera capture", err)
	}
	if gen != c.generation || c.state != Streaming {
		return apperr.New(apperr.KindCamera, "camera capture", "camera closed while capturing")
	}
	c.preview = frame
	c.state = Previewing
	return nil
}

// Preview returns the captured still, or nil outside Previewing.
func (c *Controller) Preview() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Retake drops the preview and returns to Streaming.
func (c *Controller) Retake() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Previewing {
		return apperr.New(apperr.KindState, "camera retake", "nothing to retake while %s", c.state)
	}
	c.preview = nil
	c.state = Streaming
	return nil
}

// Confirm turns the previewed frame into an acquisition session.
func (c *Controller) Confirm(opts models.ProcessingOptions) (*acquisition.Session, error) {
	c.mu.Lock()
	if c.state != Previewing {
		state := c.state
		c.mu.Unlock()
		return nil, apperr.New(apperr.KindState, "camera confirm", "no captured frame while %s", state)
	}
	frame := c.preview
	maxDim := c.MaxFrameDimension
	c.mu.Unlock()

	return acquisition.FromFrame(acquisition.Downscale(frame, maxDim), opts)
}

// Close releases the stream from any state. Safe to call more than once.
func (c *Controller) Close() error {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.preview = nil
	c.state = Closed
	c.generation++
	c.capturing = false
	c.mu.Unlock()

	if stream != nil {
		return stream.Close()
	}
	return nil
}
