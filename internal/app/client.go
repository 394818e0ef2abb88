// Package app composes one diagnosis client: the prediction workflow, the
// locale store that renders it, and the optional camera and geo locator.
package app

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/camera"
	"github.com/lehigh-university-libraries/cropscan/internal/geo"
	"github.com/lehigh-university-libraries/cropscan/internal/locale"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/observability"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
)

// Options configures a Client. Predictor is required.
type Options struct {
	Predictor workflow.Predictor
	Feedback  workflow.FeedbackSender
	Language  string

	// Camera enables the capture operations when set.
	Camera            camera.Device
	MaxFrameDimension int

	// Geo enables location context. Position defaults to a manual source
	// set through SetLocation.
	Geo      bool
	Position geo.PositionSource
	Reverser geo.Reverser

	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Client is one user's diagnosis session.
type Client struct {
	ID string

	workflow *workflow.Workflow
	store    *locale.Store
	camera   *camera.Controller
	locator  *geo.Locator
	manual   *geo.ManualPosition
	metrics  *observability.Metrics
	logger   *slog.Logger

	closeOnce sync.Once
}

// New builds a client and starts its background location lookup.
func New(ctx context.Context, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		ID:      uuid.NewString(),
		store:   locale.NewStore(opts.Language),
		metrics: opts.Metrics,
	}
	c.logger = logger.With("client_id", c.ID)

	if opts.Geo {
		source := opts.Position
		if source == nil {
			c.manual = geo.NewManualPosition()
			source = c.manual
		}
		c.locator = geo.NewLocator(source, opts.Reverser, c.logger)
	}

	cfg := workflow.Config{
		Predictor: opts.Predictor,
		Feedback:  opts.Feedback,
		Locale:    c.store,
		Logger:    c.logger,
	}
	if c.locator != nil {
		cfg.Geo = c.locator
	}
	c.workflow = workflow.New(cfg)
	c.workflow.On(c.render)
	if c.metrics != nil {
		c.workflow.On(c.metrics.Listener())
		c.metrics.ClientOpened()
	}

	if opts.Camera != nil {
		c.camera = camera.NewController(opts.Camera, c.logger)
		c.camera.MaxFrameDimension = opts.MaxFrameDimension
	}

	if c.locator != nil {
		c.locator.Start(ctx)
	}
	return c
}

// render keeps the displayed view in step with the workflow.
func (c *Client) render(tr workflow.Transition) {
	switch tr.To {
	case workflow.Resulted:
		c.store.Show(tr.Result)
	case workflow.FeedbackResolved:
		c.store.ShowInsights(tr.Insights)
	case workflow.Idle, workflow.Acquiring, workflow.Ready:
		c.store.Clear()
	}
}

// AcquireUpload validates an uploaded file and makes it the active image.
func (c *Client) AcquireUpload(filename, contentType string, data []byte, opts models.ProcessingOptions) (*acquisition.Session, error) {
	s, err := acquisition.FromUpload(filename, contentType, data, opts)
	if err != nil {
		return nil, err
	}
	if err := c.Acquire(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Acquire makes an already validated session the active image. The session
// is released if the workflow rejects it.
func (c *Client) Acquire(s *acquisition.Session) error {
	if err := c.workflow.Acquire(s); err != nil {
		s.Release()
		return err
	}
	return nil
}

func (c *Client) requireCamera(op string) error {
	if c.camera == nil {
		return apperr.New(apperr.KindCamera, op, "no camera available")
	}
	return nil
}

// OpenCamera starts acquisition from the camera. A failure to open leaves
// the workflow where it was.
func (c *Client) OpenCamera(ctx context.Context, facing camera.Facing) error {
	if err := c.requireCamera("camera open"); err != nil {
		return err
	}
	if err := c.camera.Open(ctx, facing); err != nil {
		return err
	}
	if c.workflow.State() == workflow.Acquiring {
		return nil
	}
	// the current result is only discarded once the camera is streaming
	if err := c.workflow.BeginAcquisition(); err != nil {
		if cerr := c.camera.Close(); cerr != nil {
			c.logger.Warn("Failed to release camera", "err", cerr)
		}
		return err
	}
	return nil
}

// CaptureFrame freezes the current frame for preview.
func (c *Client) CaptureFrame() error {
	if err := c.requireCamera("camera capture"); err != nil {
		return err
	}
	return c.camera.Capture()
}

// Preview returns the frozen frame, or nil outside of preview.
func (c *Client) Preview() image.Image {
	if c.camera == nil {
		return nil
	}
	return c.camera.Preview()
}

// RetakeFrame discards the preview and resumes streaming.
func (c *Client) RetakeFrame() error {
	if err := c.requireCamera("camera retake"); err != nil {
		return err
	}
	return c.camera.Retake()
}

// SwitchCamera flips between the rear and front cameras. On failure the
// camera is closed and must be reopened.
func (c *Client) SwitchCamera(ctx context.Context) error {
	if err := c.requireCamera("camera switch"); err != nil {
		return err
	}
	return c.camera.SwitchFacing(ctx)
}

// ConfirmFrame turns the previewed frame into the active image and
// releases the camera.
func (c *Client) ConfirmFrame(opts models.ProcessingOptions) (*acquisition.Session, error) {
	if err := c.requireCamera("camera confirm"); err != nil {
		return nil, err
	}
	s, err := c.camera.Confirm(opts)
	if err != nil {
		return nil, err
	}
	if err := c.Acquire(s); err != nil {
		return nil, err
	}
	if err := c.camera.Close(); err != nil {
		c.logger.Warn("Failed to release camera", "err", err)
	}
	return s, nil
}

// CloseCamera releases the camera and abandons a camera acquisition.
func (c *Client) CloseCamera() error {
	if c.camera == nil {
		return nil
	}
	err := c.camera.Close()
	if c.workflow.State() == workflow.Acquiring {
		_ = c.workflow.CancelAcquisition()
	}
	return err
}

// AcquireCamera opens the camera, captures one frame and confirms it.
func (c *Client) AcquireCamera(ctx context.Context, facing camera.Facing, opts models.ProcessingOptions) (*acquisition.Session, error) {
	if err := c.OpenCamera(ctx, facing); err != nil {
		return nil, err
	}
	if err := c.CaptureFrame(); err != nil {
		_ = c.CloseCamera()
		return nil, err
	}
	s, err := c.ConfirmFrame(opts)
	if err != nil {
		_ = c.CloseCamera()
		return nil, err
	}
	return s, nil
}

// Submit sends the active image for prediction.
func (c *Client) Submit(ctx context.Context) (*models.ResultSet, error) {
	return c.workflow.Submit(ctx)
}

// Reset returns to Idle, releasing the camera as well.
func (c *Client) Reset() error {
	if err := c.workflow.Reset(); err != nil {
		return err
	}
	if c.camera != nil {
		return c.camera.Close()
	}
	return nil
}

func (c *Client) OpenFeedback(ctx context.Context, judgment models.Judgment) error {
	return c.workflow.OpenFeedback(ctx, judgment)
}

func (c *Client) ResolveFeedback(ctx context.Context, record models.FeedbackRecord) error {
	return c.workflow.ResolveFeedback(ctx, record)
}

// SetLanguage switches the display language. It never touches the network.
func (c *Client) SetLanguage(code string) (string, error) {
	return c.store.SetLanguage(code)
}

// SetLocation supplies coordinates reported by the user's device. It only
// has an effect the first time, and only when no fixed position source was
// configured.
func (c *Client) SetLocation(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return apperr.Validation("set location", "coordinates out of range: %f,%f", lat, lon)
	}
	if c.manual == nil {
		return nil
	}
	c.manual.Set(lat, lon)
	return nil
}

// Location returns the resolved location, or nil.
func (c *Client) Location() *models.GeoContext {
	return c.locator.Current()
}

// OnChange registers a listener for view changes.
func (c *Client) OnChange(l locale.Listener) {
	c.store.OnChange(l)
}

// CameraView describes the camera for display.
type CameraView struct {
	Available bool            `json:"available"`
	State     string          `json:"state,omitempty"`
	Facing    camera.Facing   `json:"facing,omitempty"`
	Controls  camera.Controls `json:"controls"`
}

// Snapshot is everything a front end needs to draw the client.
type Snapshot struct {
	ClientID string             `json:"client_id"`
	View     locale.View        `json:"view"`
	Status   workflow.Status    `json:"status"`
	Camera   CameraView         `json:"camera"`
	Location *models.GeoContext `json:"location,omitempty"`
}

// View returns a snapshot of the client.
func (c *Client) View() Snapshot {
	snap := Snapshot{
		ClientID: c.ID,
		View:     c.store.View(),
		Status:   c.workflow.Status(),
		Location: c.Location(),
	}
	if c.camera != nil {
		snap.Camera = CameraView{
			Available: true,
			State:     c.camera.State().String(),
			Facing:    c.camera.Facing(),
			Controls:  c.camera.Controls(),
		}
	}
	return snap
}

// Workflow exposes the underlying state machine.
func (c *Client) Workflow() *workflow.Workflow {
	return c.workflow
}

// Close releases the camera, the workflow and the locator. It is safe to
// call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if c.camera != nil {
			err = c.camera.Close()
		}
		if cerr := c.workflow.Close(); cerr != nil && err == nil {
			err = cerr
		}
		c.locator.Stop()
		if c.metrics != nil {
			c.metrics.ClientClosed()
		}
		c.logger.Debug("Client closed")
	})
	return err
}
