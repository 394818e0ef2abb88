package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePredictor answers from a queue. When gate is set, each call blocks
// until a value is received from it.
type fakePredictor struct {
	mu       sync.Mutex
	calls    atomic.Int32
	requests []models.PredictionRequest
	results  []*models.ResultSet
	errs     []error
	gate     chan struct{}
	started  chan struct{}
}

func (p *fakePredictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.ResultSet, error) {
	n := int(p.calls.Add(1)) - 1
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if n < len(p.errs) {
		err = p.errs[n]
	}
	if err != nil {
		return nil, err
	}
	if n < len(p.results) {
		return p.results[n], nil
	}
	return p.results[len(p.results)-1], nil
}

func (p *fakePredictor) lastRequest() models.PredictionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

type fakeFeedback struct {
	mu       sync.Mutex
	calls    atomic.Int32
	requests []models.FeedbackRequest
	resp     *models.FeedbackResponse
	err      error
	gate     chan struct{}
	started  chan struct{}
}

func (f *fakeFeedback) SendFeedback(ctx context.Context, req models.FeedbackRequest) (*models.FeedbackResponse, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeFeedback) lastRequest() models.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type staticLocale string

func (l staticLocale) Language() string { return string(l) }

type staticGeo struct{ g *models.GeoContext }

func (s staticGeo) Current() *models.GeoContext { return s.g }

func healthyResult() *models.ResultSet {
	return &models.ResultSet{
		Predictions: []models.Prediction{{Class: "Tomato__healthy", Probability: 92}},
		ImagePath:   "/uploads/a.jpg",
	}
}

func lowConfidenceResult() *models.ResultSet {
	return &models.ResultSet{
		Predictions: []models.Prediction{
			{Class: "X", Probability: 40},
			{Class: "Y", Probability: 35},
			{Class: "Z", Probability: 25},
		},
		LowConfidence: true,
	}
}

func newSession(t *testing.T, name string) *acquisition.Session {
	t.Helper()
	s, err := acquisition.FromUpload(name, "image/jpeg", []byte("jpeg:"+name), models.ProcessingOptions{AutoCrop: true})
	require.NoError(t, err)
	return s
}

type recorder struct {
	mu  sync.Mutex
	trs []Transition
}

func (r *recorder) listen(tr Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trs = append(r.trs, tr)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, 0, len(r.trs))
	for _, tr := range r.trs {
		out = append(out, tr.To)
	}
	return out
}

func TestUploadSubmitResulted(t *testing.T) {
	pred := &fakePredictor{results: []*models.ResultSet{healthyResult()}}
	rec := &recorder{}
	w := New(Config{
		Predictor: pred,
		Locale:    staticLocale("es"),
		Geo:       staticGeo{&models.GeoContext{Latitude: 1, Longitude: 2, Name: "Here"}},
	})
	w.On(rec.listen)

	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	assert.Equal(t, Ready, w.State())

	rs, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Resulted, w.State())
	assert.Equal(t, "Tomato__healthy", rs.Top().Class)
	assert.Equal(t, "es", rs.Language)
	assert.NotEmpty(t, rs.ID)

	req := pred.lastRequest()
	assert.Equal(t, "a.jpg", req.Filename)
	assert.Equal(t, "jpeg:a.jpg", string(req.Image))
	assert.Equal(t, "es", req.Language)
	assert.True(t, req.Options.AutoCrop)
	require.NotNil(t, req.Geo)
	assert.Equal(t, "Here", req.Geo.Name)
	assert.Equal(t, req.RequestID, rs.ID)

	assert.Equal(t, []State{Ready, Submitting, Resulted}, rec.states())
	assert.Equal(t, int32(1), pred.calls.Load())

	st := w.Status()
	assert.Equal(t, Resulted, st.State)
	assert.Equal(t, rs.ID, st.SubmissionID)
	assert.Equal(t, models.SourceUpload, st.Source)
}

func TestSubmitWithoutSessionIsValidationError(t *testing.T) {
	pred := &fakePredictor{results: []*models.ResultSet{healthyResult()}}
	w := New(Config{Predictor: pred})

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, Idle, w.State())
	assert.Zero(t, pred.calls.Load())

	assert.ErrorIs(t, w.Acquire(nil), apperr.ErrValidation)
}

func TestSecondSubmitWhilePendingIsRejected(t *testing.T) {
	pred := &fakePredictor{
		results: []*models.ResultSet{healthyResult()},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	w := New(Config{Predictor: pred})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-pred.started
	assert.Equal(t, Submitting, w.State())

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrRequestInFlight)
	assert.ErrorIs(t, err, apperr.ErrInFlight)
	assert.Equal(t, Submitting, w.State())

	assert.ErrorIs(t, w.Reset(), ErrRequestInFlight)
	assert.ErrorIs(t, w.Acquire(newSession(t, "b.jpg")), apperr.ErrState)

	close(pred.gate)
	require.NoError(t, <-done)
	assert.Equal(t, Resulted, w.State())
	assert.Equal(t, int32(1), pred.calls.Load())
}

func TestPredictionFailureReturnsToReady(t *testing.T) {
	pred := &fakePredictor{
		errs:    []error{errors.New("connection refused"), nil},
		results: []*models.ResultSet{nil, healthyResult()},
	}
	rec := &recorder{}
	w := New(Config{Predictor: pred})
	w.On(rec.listen)
	session := newSession(t, "a.jpg")
	require.NoError(t, w.Acquire(session))

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPrediction)
	assert.Equal(t, Ready, w.State())
	assert.Same(t, session, w.Session())
	assert.False(t, session.Released())

	st := w.Status()
	assert.Equal(t, apperr.KindPrediction, st.ErrorKind)
	assert.Contains(t, st.Error, "connection refused")

	// retry without re-acquiring
	rs, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tomato__healthy", rs.Top().Class)
	assert.Empty(t, w.Status().Error)

	assert.Equal(t, []State{Ready, Submitting, Ready, Submitting, Resulted}, rec.states())
	assert.Error(t, rec.trs[2].Err)
}

func TestEmptyResultIsPredictionError(t *testing.T) {
	pred := &fakePredictor{results: []*models.ResultSet{{}}}
	w := New(Config{Predictor: pred})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, apperr.ErrPrediction)
	assert.Equal(t, Ready, w.State())
}

func TestResultIsolatedFromPredictor(t *testing.T) {
	shared := healthyResult()
	pred := &fakePredictor{results: []*models.ResultSet{shared}}
	w := New(Config{Predictor: pred})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))

	rs, err := w.Submit(context.Background())
	require.NoError(t, err)
	rs.Predictions[0].Class = "changed by caller"
	shared.Predictions[0].Class = "changed by predictor"

	assert.Equal(t, "Tomato__healthy", w.Result().Top().Class)
}

func TestResetFromResultedGivesIndependentFlow(t *testing.T) {
	pred := &fakePredictor{results: []*models.ResultSet{lowConfidenceResult(), healthyResult()}}
	w := New(Config{Predictor: pred})

	first := newSession(t, "a.jpg")
	require.NoError(t, w.Acquire(first))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.Reset())
	assert.Equal(t, Idle, w.State())
	assert.Nil(t, w.Result())
	assert.Nil(t, w.Session())
	assert.True(t, first.Released())

	_, err = w.Submit(context.Background())
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, w.Acquire(newSession(t, "b.jpg")))
	rs, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Tomato__healthy", rs.Top().Class)
	assert.False(t, rs.LowConfidence)
	assert.Equal(t, "b.jpg", pred.lastRequest().Filename)

	st := w.Status()
	assert.Empty(t, st.Judgment)
	assert.Nil(t, st.Insights)
}

func TestAcquireSupersedesSession(t *testing.T) {
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}})
	a := newSession(t, "a.jpg")
	b := newSession(t, "b.jpg")

	require.NoError(t, w.Acquire(a))
	require.NoError(t, w.Acquire(a))
	assert.False(t, a.Released())

	require.NoError(t, w.Acquire(b))
	assert.True(t, a.Released())
	assert.False(t, b.Released())
	assert.Same(t, b, w.Session())
}

func TestAcquireAfterResultDiscardsResult(t *testing.T) {
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.BeginAcquisition())
	assert.Equal(t, Acquiring, w.State())
	assert.Nil(t, w.Result())

	require.NoError(t, w.CancelAcquisition())
	assert.Equal(t, Idle, w.State())
	assert.ErrorIs(t, w.CancelAcquisition(), apperr.ErrState)
}

func TestCorrectFeedbackSkipsFeedbackOpen(t *testing.T) {
	insights := &models.Insights{RegionDiseases: []models.DiseaseCount{{Name: "Tomato__healthy", Count: 4}}}
	fb := &fakeFeedback{resp: &models.FeedbackResponse{Message: "ok", Insights: insights}}
	rec := &recorder{}
	w := New(Config{
		Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}},
		Feedback:  fb,
		Geo:       staticGeo{&models.GeoContext{Latitude: 1, Longitude: 2, Name: "Here"}},
	})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)
	w.On(rec.listen)

	require.NoError(t, w.OpenFeedback(context.Background(), models.Correct))
	assert.Equal(t, FeedbackResolved, w.State())
	assert.Equal(t, []State{FeedbackSubmitting, FeedbackResolved}, rec.states())
	assert.Equal(t, insights, rec.trs[1].Insights)

	req := fb.lastRequest()
	assert.Equal(t, "Tomato__healthy", req.OriginalPrediction)
	assert.InDelta(t, 92.0, req.Confidence, 0.001)
	assert.True(t, req.IsCorrect)
	assert.Empty(t, req.CorrectedDisease)
	assert.False(t, req.Contribute)
	assert.Equal(t, "Here", req.Geo.Name)

	st := w.Status()
	assert.Equal(t, insights, st.Insights)
	assert.Equal(t, "ok", st.FeedbackMessage)
	assert.Equal(t, models.Correct, st.Judgment)

	// feedback is terminal for this result
	assert.ErrorIs(t, w.OpenFeedback(context.Background(), models.Incorrect), apperr.ErrState)
	assert.Equal(t, int32(1), fb.calls.Load())
}

func TestIncorrectFeedbackWithContribution(t *testing.T) {
	fb := &fakeFeedback{resp: &models.FeedbackResponse{}}
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{lowConfidenceResult()}}, Feedback: fb})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.OpenFeedback(context.Background(), models.Incorrect))
	assert.Equal(t, FeedbackOpen, w.State())
	assert.Zero(t, fb.calls.Load())

	err = w.ResolveFeedback(context.Background(), models.FeedbackRecord{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, FeedbackOpen, w.State())

	err = w.ResolveFeedback(context.Background(), models.FeedbackRecord{Judgment: models.Correct, CorrectedLabel: "Y"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, w.ResolveFeedback(context.Background(), models.FeedbackRecord{
		Judgment:        models.Incorrect,
		CorrectedLabel:  "Y",
		ContributeImage: true,
	}))
	assert.Equal(t, FeedbackResolved, w.State())

	req := fb.lastRequest()
	assert.Equal(t, "X", req.OriginalPrediction)
	assert.False(t, req.IsCorrect)
	assert.Equal(t, "Y", req.CorrectedDisease)
	assert.True(t, req.Contribute)
	assert.Equal(t, "jpeg:a.jpg", string(req.Image))
	assert.Equal(t, "image/jpeg", req.ContentType)
	assert.Nil(t, w.Status().Insights)
}

func TestFeedbackFailureReturnsToResulted(t *testing.T) {
	fb := &fakeFeedback{err: &apperr.Error{Kind: apperr.KindFeedback, Message: "Error submitting feedback"}}
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}, Feedback: fb})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	before, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.OpenFeedback(context.Background(), models.Incorrect))
	err = w.ResolveFeedback(context.Background(), models.FeedbackRecord{CorrectedLabel: "Tomato__leaf_mold"})
	assert.ErrorIs(t, err, apperr.ErrFeedback)
	assert.Equal(t, Resulted, w.State())
	assert.Equal(t, before, w.Result())
	assert.Equal(t, apperr.KindFeedback, w.Status().ErrorKind)

	// a plain error is classified too, and correction can be retried
	fb.err = errors.New("timeout")
	err = w.OpenFeedback(context.Background(), models.Correct)
	assert.ErrorIs(t, err, apperr.ErrFeedback)
	assert.Equal(t, Resulted, w.State())

	fb.err = nil
	fb.resp = &models.FeedbackResponse{}
	require.NoError(t, w.OpenFeedback(context.Background(), models.Correct))
	assert.Equal(t, FeedbackResolved, w.State())
}

func TestFeedbackOpenResetIsAllowed(t *testing.T) {
	fb := &fakeFeedback{resp: &models.FeedbackResponse{}}
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}, Feedback: fb})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, w.OpenFeedback(context.Background(), models.Incorrect))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, FeedbackOpen, w.State())

	require.NoError(t, w.Reset())
	assert.Equal(t, Idle, w.State())
	assert.Nil(t, w.Result())
	assert.Zero(t, fb.calls.Load())
}

func TestSecondFeedbackWhileInFlightIsRejected(t *testing.T) {
	fb := &fakeFeedback{resp: &models.FeedbackResponse{}, gate: make(chan struct{}), started: make(chan struct{}, 1)}
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}, Feedback: fb})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- w.OpenFeedback(context.Background(), models.Correct) }()
	<-fb.started

	assert.Equal(t, FeedbackSubmitting, w.State())
	assert.ErrorIs(t, w.OpenFeedback(context.Background(), models.Correct), ErrRequestInFlight)
	assert.ErrorIs(t, w.Reset(), ErrRequestInFlight)

	close(fb.gate)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), fb.calls.Load())
}

func TestCloseMakesInFlightPredictionStale(t *testing.T) {
	pred := &fakePredictor{
		results: []*models.ResultSet{healthyResult()},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	rec := &recorder{}
	w := New(Config{Predictor: pred})
	session := newSession(t, "a.jpg")
	require.NoError(t, w.Acquire(session))
	w.On(rec.listen)

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()
	<-pred.started

	require.NoError(t, w.Close())
	assert.Equal(t, Idle, w.State())
	assert.True(t, session.Released())

	close(pred.gate)
	err := <-done
	assert.ErrorIs(t, err, ErrStaleResponse)
	assert.True(t, IsStale(err))

	// the stale response did not touch state or notify listeners
	assert.Equal(t, Idle, w.State())
	assert.Nil(t, w.Result())
	assert.Equal(t, []State{Submitting, Idle}, rec.states())

	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Acquire(newSession(t, "b.jpg")), apperr.ErrState)
}

func TestIllegalTransitions(t *testing.T) {
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}, Feedback: &fakeFeedback{}})
	ctx := context.Background()

	assert.ErrorIs(t, w.OpenFeedback(ctx, models.Correct), apperr.ErrState)
	assert.ErrorIs(t, w.ResolveFeedback(ctx, models.FeedbackRecord{CorrectedLabel: "X"}), apperr.ErrState)
	assert.ErrorIs(t, w.OpenFeedback(ctx, models.Judgment("maybe")), apperr.ErrValidation)

	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	assert.ErrorIs(t, w.OpenFeedback(ctx, models.Correct), apperr.ErrState)
	require.NoError(t, w.Reset())
	require.NoError(t, w.Reset())
}

func TestNoFeedbackServiceConfigured(t *testing.T) {
	w := New(Config{Predictor: &fakePredictor{results: []*models.ResultSet{healthyResult()}}})
	require.NoError(t, w.Acquire(newSession(t, "a.jpg")))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, w.OpenFeedback(context.Background(), models.Correct), apperr.ErrFeedback)
	assert.Equal(t, Resulted, w.State())
}

func TestStateText(t *testing.T) {
	b, err := FeedbackOpen.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "feedback_open", string(b))

	var s State
	require.NoError(t, s.UnmarshalText([]byte("submitting")))
	assert.Equal(t, Submitting, s)
	assert.Error(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, "State(42)", State(42).String())
	assert.True(t, FeedbackSubmitting.InFlight())
	assert.False(t, FeedbackOpen.InFlight())
}
