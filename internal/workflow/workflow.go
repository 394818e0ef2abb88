// Package workflow is the client's prediction state machine. It owns the
// acquired image, drives one prediction request at a time, holds the
// returned result, and runs the feedback exchange for that result.
//
// Every transition validates the current state and returns a typed error
// when the call is not allowed. Requests are tagged with the identity of the
// state they were issued against; a response whose tag is no longer current
// is dropped.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// Predictor classifies one image.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.ResultSet, error)
}

// FeedbackSender submits a judgment for a result.
type FeedbackSender interface {
	SendFeedback(ctx context.Context, req models.FeedbackRequest) (*models.FeedbackResponse, error)
}

// LocaleSource reports the active language.
type LocaleSource interface {
	Language() string
}

// GeoSource reports a known location without blocking.
type GeoSource interface {
	Current() *models.GeoContext
}

var (
	// ErrRequestInFlight rejects calls that would overlap an outstanding request.
	ErrRequestInFlight = &apperr.Error{Kind: apperr.KindInFlight, Message: "a request is already in flight"}

	// ErrStaleResponse is returned to the caller whose response arrived
	// after the state it targeted was abandoned.
	ErrStaleResponse = &apperr.Error{Kind: apperr.KindStale, Message: "response discarded: state changed while request was in flight"}
)

// Config wires a workflow to its collaborators. Predictor is required;
// the rest are optional.
type Config struct {
	Predictor Predictor
	Feedback  FeedbackSender
	Locale    LocaleSource
	Geo       GeoSource
	Logger    *slog.Logger
}

// Workflow is safe for concurrent use. Blocking collaborator calls run
// without the lock held.
type Workflow struct {
	predictor Predictor
	feedback  FeedbackSender
	locale    LocaleSource
	geo       GeoSource
	logger    *slog.Logger

	mu              sync.Mutex
	state           State
	session         *acquisition.Session
	pending         *Submission
	submission      *Submission
	result          *models.ResultSet
	judgment        models.Judgment
	feedbackTag     string
	feedbackMessage string
	insights        *models.Insights
	lastErr         error
	closed          bool

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New returns an Idle workflow.
func New(cfg Config) *Workflow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		predictor: cfg.Predictor,
		feedback:  cfg.Feedback,
		locale:    cfg.Locale,
		geo:       cfg.Geo,
		logger:    logger,
	}
}

// On registers a transition listener. Listeners run synchronously on the
// goroutine that caused the transition, after the lock is released.
func (w *Workflow) On(l Listener) {
	w.listenersMu.Lock()
	defer w.listenersMu.Unlock()
	w.listeners = append(w.listeners, l)
}

func (w *Workflow) emit(tr *Transition) {
	if tr == nil {
		return
	}
	w.listenersMu.RLock()
	listeners := append([]Listener(nil), w.listeners...)
	w.listenersMu.RUnlock()
	for _, l := range listeners {
		l(*tr)
	}
}

// setState must be called with mu held.
func (w *Workflow) setState(to State, err error) *Transition {
	from := w.state
	w.state = to
	w.lastErr = err
	w.logger.Debug("Workflow transition", "from", from, "to", to, "err", err)
	return &Transition{
		From:     from,
		To:       to,
		Result:   w.result.Clone(),
		Insights: w.insights,
		Err:      err,
	}
}

func illegal(op string, s State) error {
	return apperr.New(apperr.KindState, op, "not allowed while %s", s)
}

// discard drops the session, result and feedback. mu must be held.
func (w *Workflow) discard() {
	if w.session != nil {
		w.session.Release()
	}
	w.session = nil
	w.pending = nil
	w.submission = nil
	w.result = nil
	w.judgment = ""
	w.feedbackTag = ""
	w.feedbackMessage = ""
	w.insights = nil
}

// BeginAcquisition discards the current image and result and waits for a
// new image.
func (w *Workflow) BeginAcquisition() error {
	w.mu.Lock()
	switch w.state {
	case Idle, Ready, Resulted, FeedbackResolved:
	default:
		s := w.state
		w.mu.Unlock()
		return illegal("begin acquisition", s)
	}
	if w.closed {
		w.mu.Unlock()
		return apperr.New(apperr.KindState, "begin acquisition", "workflow closed")
	}
	w.discard()
	tr := w.setState(Acquiring, nil)
	w.mu.Unlock()

	w.emit(tr)
	return nil
}

// CancelAcquisition abandons an acquisition that produced no image.
func (w *Workflow) CancelAcquisition() error {
	w.mu.Lock()
	if w.state != Acquiring {
		s := w.state
		w.mu.Unlock()
		return illegal("cancel acquisition", s)
	}
	tr := w.setState(Idle, nil)
	w.mu.Unlock()

	w.emit(tr)
	return nil
}

// Acquire makes session the active image. The previous session is released
// and any prior result is discarded.
func (w *Workflow) Acquire(session *acquisition.Session) error {
	if session == nil {
		return apperr.Validation("acquire", "no image selected")
	}

	w.mu.Lock()
	switch w.state {
	case Idle, Acquiring, Ready, Resulted, FeedbackResolved:
	default:
		s := w.state
		w.mu.Unlock()
		return illegal("acquire", s)
	}
	if w.closed {
		w.mu.Unlock()
		return apperr.New(apperr.KindState, "acquire", "workflow closed")
	}
	if w.session == session {
		w.session = nil
	}
	w.discard()
	w.session = session
	tr := w.setState(Ready, nil)
	w.mu.Unlock()

	w.logger.Info("Image acquired", "session_id", session.ID, "source", session.Source, "bytes", session.Size())
	w.emit(tr)
	return nil
}

// Submit sends the active image to the predictor and blocks until it
// answers. Only one prediction may be outstanding.
func (w *Workflow) Submit(ctx context.Context) (*models.ResultSet, error) {
	w.mu.Lock()
	if w.state == Submitting {
		w.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	if w.state != Ready {
		s := w.state
		w.mu.Unlock()
		if s == Idle || s == Acquiring {
			return nil, apperr.Validation("submit", "no image to submit")
		}
		return nil, illegal("submit", s)
	}
	if w.session == nil {
		w.mu.Unlock()
		return nil, apperr.Validation("submit", "no image to submit")
	}
	blob, err := w.session.Blob()
	if err != nil {
		w.mu.Unlock()
		return nil, apperr.Validation("submit", "image no longer available")
	}

	sub := &Submission{
		ID:       uuid.NewString(),
		Session:  w.session,
		Language: w.language(),
		Status:   Pending,
		Started:  time.Now(),
	}
	w.pending = sub
	tr := w.setState(Submitting, nil)
	w.mu.Unlock()
	w.emit(tr)

	req := models.PredictionRequest{
		RequestID:   sub.ID,
		Filename:    sub.Session.Filename,
		ContentType: sub.Session.ContentType,
		Image:       blob,
		Options:     sub.Session.Options,
		Language:    sub.Language,
		Geo:         w.currentGeo(),
	}
	w.logger.Info("Submitting image for prediction", "submission_id", sub.ID, "language", sub.Language, "enhance_contrast", req.Options.EnhanceContrast, "auto_crop", req.Options.AutoCrop)

	rs, err := w.predict(ctx, req)
	if err == nil && (rs == nil || len(rs.Predictions) == 0) {
		err = apperr.New(apperr.KindPrediction, "predict", "malformed response: no results")
	}

	w.mu.Lock()
	if w.pending != sub {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale prediction response", "submission_id", sub.ID)
		return nil, ErrStaleResponse
	}
	w.pending = nil
	sub.Finished = time.Now()

	if err != nil {
		if apperr.KindOf(err) != apperr.KindPrediction {
			err = apperr.Wrap(apperr.KindPrediction, "predict", err)
		}
		sub.Status = Failed
		sub.Err = err
		tr = w.setState(Ready, err)
		w.mu.Unlock()

		w.logger.Warn("Prediction failed", "submission_id", sub.ID, "err", err)
		w.emit(tr)
		return nil, err
	}

	rs = rs.Clone()
	if rs.ID == "" {
		rs.ID = sub.ID
	}
	if rs.Language == "" {
		rs.Language = sub.Language
	}
	if rs.ReceivedAt.IsZero() {
		rs.ReceivedAt = sub.Finished
	}
	sub.Status = Succeeded
	sub.Result = rs
	w.submission = sub
	w.result = rs
	w.judgment = ""
	w.insights = nil
	tr = w.setState(Resulted, nil)
	w.mu.Unlock()

	w.logger.Info("Prediction received", "submission_id", sub.ID, "class", rs.Top().Class, "probability", rs.Top().Probability, "low_confidence", rs.LowConfidence, "duration", sub.Finished.Sub(sub.Started))
	w.emit(tr)
	return rs.Clone(), nil
}

func (w *Workflow) predict(ctx context.Context, req models.PredictionRequest) (rs *models.ResultSet, err error) {
	if w.predictor == nil {
		return nil, apperr.New(apperr.KindPrediction, "predict", "no prediction service configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperr.New(apperr.KindPrediction, "predict", "predictor panicked: %v", r)
		}
	}()
	return w.predictor.Predict(ctx, req)
}

// Reset discards everything and returns to Idle. It is rejected while a
// request is in flight.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	if w.state == Submitting || w.state == FeedbackSubmitting {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	w.discard()
	tr := w.setState(Idle, nil)
	w.mu.Unlock()

	w.emit(tr)
	return nil
}

// OpenFeedback records the user's verdict on the current result. A Correct
// verdict is sent immediately; Incorrect waits for ResolveFeedback.
func (w *Workflow) OpenFeedback(ctx context.Context, judgment models.Judgment) error {
	switch judgment {
	case models.Correct, models.Incorrect:
	default:
		return apperr.Validation("open feedback", "unknown judgment %q", judgment)
	}

	w.mu.Lock()
	if w.state == FeedbackSubmitting {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	if w.state != Resulted {
		s := w.state
		w.mu.Unlock()
		return illegal("open feedback", s)
	}
	if w.feedback == nil {
		w.mu.Unlock()
		return apperr.New(apperr.KindFeedback, "open feedback", "no feedback service configured")
	}
	w.judgment = judgment

	if judgment == models.Incorrect {
		tr := w.setState(FeedbackOpen, nil)
		w.mu.Unlock()
		w.emit(tr)
		return nil
	}

	return w.sendFeedbackLocked(ctx, models.FeedbackRecord{Judgment: models.Correct})
}

// ResolveFeedback submits the correction entered after an Incorrect verdict.
func (w *Workflow) ResolveFeedback(ctx context.Context, record models.FeedbackRecord) error {
	if record.Judgment == "" {
		record.Judgment = models.Incorrect
	}
	if record.Judgment != models.Incorrect {
		return apperr.Validation("resolve feedback", "a correction must be an incorrect judgment")
	}
	if record.CorrectedLabel == "" {
		return apperr.Validation("resolve feedback", "select the correct disease")
	}

	w.mu.Lock()
	if w.state == FeedbackSubmitting {
		w.mu.Unlock()
		return ErrRequestInFlight
	}
	if w.state != FeedbackOpen {
		s := w.state
		w.mu.Unlock()
		return illegal("resolve feedback", s)
	}
	return w.sendFeedbackLocked(ctx, record)
}

// sendFeedbackLocked is entered with mu held and releases it.
func (w *Workflow) sendFeedbackLocked(ctx context.Context, record models.FeedbackRecord) error {
	top := w.result.Top()
	req := models.FeedbackRequest{
		RequestID:          uuid.NewString(),
		OriginalPrediction: top.Class,
		Confidence:         top.Probability,
		IsCorrect:          record.Judgment == models.Correct,
		Geo:                w.currentGeo(),
	}
	if !req.IsCorrect {
		req.CorrectedDisease = record.CorrectedLabel
		if record.ContributeImage && w.session != nil {
			if blob, err := w.session.Blob(); err == nil {
				req.Contribute = true
				req.Image = blob
				req.Filename = w.session.Filename
				req.ContentType = w.session.ContentType
			}
		}
	}
	tag := req.RequestID
	w.feedbackTag = tag
	resultID := w.result.ID
	tr := w.setState(FeedbackSubmitting, nil)
	w.mu.Unlock()
	w.emit(tr)

	w.logger.Info("Submitting feedback", "result_id", resultID, "is_correct", req.IsCorrect, "corrected_disease", req.CorrectedDisease, "contribute", req.Contribute)
	resp, err := w.sendFeedback(ctx, req)
	if err == nil && resp == nil {
		err = apperr.New(apperr.KindFeedback, "feedback", "empty response")
	}

	w.mu.Lock()
	if w.feedbackTag != tag || w.state != FeedbackSubmitting {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale feedback response", "result_id", resultID)
		return ErrStaleResponse
	}
	w.feedbackTag = ""

	if err != nil {
		if apperr.KindOf(err) != apperr.KindFeedback {
			err = apperr.Wrap(apperr.KindFeedback, "feedback", err)
		}
		w.judgment = ""
		tr = w.setState(Resulted, err)
		w.mu.Unlock()

		w.logger.Warn("Feedback failed", "result_id", resultID, "err", err)
		w.emit(tr)
		return err
	}

	w.insights = resp.Insights
	w.feedbackMessage = resp.Message
	tr = w.setState(FeedbackResolved, nil)
	w.mu.Unlock()

	w.logger.Info("Feedback accepted", "result_id", resultID, "insights", resp.Insights != nil)
	w.emit(tr)
	return nil
}

func (w *Workflow) sendFeedback(ctx context.Context, req models.FeedbackRequest) (resp *models.FeedbackResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.New(apperr.KindFeedback, "feedback", "feedback sender panicked: %v", r)
		}
	}()
	return w.feedback.SendFeedback(ctx, req)
}

// Close shuts the workflow down from any state. Responses still in flight
// become stale.
func (w *Workflow) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	prev := w.state
	w.discard()
	var tr *Transition
	if prev != Idle {
		tr = w.setState(Idle, nil)
	}
	w.mu.Unlock()

	w.emit(tr)
	return nil
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result returns a copy of the current result, or nil.
func (w *Workflow) Result() *models.ResultSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result.Clone()
}

// Session returns the active acquisition session, or nil.
func (w *Workflow) Session() *acquisition.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

// Status is a point-in-time snapshot of the workflow.
type Status struct {
	State           State             `json:"state" yaml:"state"`
	SessionID       string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Source          models.Source     `json:"source,omitempty" yaml:"source,omitempty"`
	SubmissionID    string            `json:"submission_id,omitempty" yaml:"submission_id,omitempty"`
	Result          *models.ResultSet `json:"result,omitempty" yaml:"result,omitempty"`
	Judgment        models.Judgment   `json:"judgment,omitempty" yaml:"judgment,omitempty"`
	Insights        *models.Insights  `json:"insights,omitempty" yaml:"insights,omitempty"`
	FeedbackMessage string            `json:"feedback_message,omitempty" yaml:"feedback_message,omitempty"`
	Error           string            `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind       apperr.Kind       `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
}

// Status returns a snapshot of the current state.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{
		State:           w.state,
		Result:          w.result.Clone(),
		Judgment:        w.judgment,
		Insights:        w.insights,
		FeedbackMessage: w.feedbackMessage,
	}
	if w.session != nil {
		st.SessionID = w.session.ID
		st.Source = w.session.Source
	}
	if w.pending != nil {
		st.SubmissionID = w.pending.ID
	} else if w.submission != nil {
		st.SubmissionID = w.submission.ID
	}
	if w.lastErr != nil {
		st.Error = w.lastErr.Error()
		st.ErrorKind = apperr.KindOf(w.lastErr)
	}
	return st
}

func (w *Workflow) language() string {
	if w.locale == nil {
		return "en"
	}
	return w.locale.Language()
}

func (w *Workflow) currentGeo() *models.GeoContext {
	if w.geo == nil {
		return nil
	}
	return w.geo.Current()
}

// IsStale reports whether err is a dropped stale response.
func IsStale(err error) bool {
	return errors.Is(err, apperr.ErrStale)
}
