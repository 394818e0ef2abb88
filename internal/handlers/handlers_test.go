package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/storage"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	mu  sync.Mutex
	err error
}

func (p *stubPredictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.ResultSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &models.ResultSet{
		Predictions: []models.Prediction{
			{Class: "Tomato__late_blight", Probability: 55.2},
			{Class: "Tomato__early_blight", Probability: 30},
		},
		LowConfidence: true,
	}, nil
}

type stubFeedback struct{}

func (stubFeedback) SendFeedback(ctx context.Context, req models.FeedbackRequest) (*models.FeedbackResponse, error) {
	return &models.FeedbackResponse{Insights: &models.Insights{
		SeasonalTrends: []models.SeasonalTrend{{Season: "Summer", Disease: req.CorrectedDisease, Count: 2}},
	}}, nil
}

type testServer struct {
	*httptest.Server
	store *storage.SessionStore
	pred  *stubPredictor
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	pred := &stubPredictor{}
	store := storage.New(time.Minute)
	cookies := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), time.Minute)
	h := New(store, cookies, func() *app.Client {
		return app.New(context.Background(), app.Options{Predictor: pred, Feedback: stubFeedback{}})
	})
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return &testServer{Server: srv, store: store, pred: pred}
}

func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 7))))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, url string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="leaf.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("auto_crop", "true"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/api/acquire", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func postJSON(t *testing.T, c *http.Client, url string, payload any) *http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	resp, err := c.Post(url, "application/json", &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestFullFlow(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)

	resp, err := browser.Do(uploadRequest(t, srv.URL, pngBytes(t)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acquired := decode[acquireResponse](t, resp)
	assert.Equal(t, "leaf.png", acquired.Filename)
	assert.Equal(t, 12, acquired.Width)
	assert.Equal(t, 7, acquired.Height)
	assert.Equal(t, models.SourceUpload, acquired.Source)

	resp = postJSON(t, browser, srv.URL+"/api/submit", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[app.Snapshot](t, resp)
	assert.Equal(t, workflow.Resulted, snap.Status.State)
	require.NotNil(t, snap.View.Result)
	assert.Equal(t, 55, snap.View.Result.Confidence)
	assert.Len(t, snap.View.Result.Alternatives, 2)

	resp = postJSON(t, browser, srv.URL+"/api/language", map[string]string{"language": "es"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	assert.Equal(t, "es", snap.View.Language)
	assert.Equal(t, "es", snap.View.Result.Language)

	resp = postJSON(t, browser, srv.URL+"/api/feedback", map[string]string{"judgment": "incorrect"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, workflow.FeedbackOpen, decode[app.Snapshot](t, resp).Status.State)

	resp = postJSON(t, browser, srv.URL+"/api/feedback/resolve", map[string]any{"corrected_disease": "Tomato__early_blight", "contribute_to_dataset": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	assert.Equal(t, workflow.FeedbackResolved, snap.Status.State)
	require.NotNil(t, snap.View.Insights)
	require.Len(t, snap.View.Insights.SeasonalTrends, 1)

	resp, err = browser.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, workflow.FeedbackResolved, decode[app.Snapshot](t, resp).Status.State)

	resp = postJSON(t, browser, srv.URL+"/api/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap = decode[app.Snapshot](t, resp)
	assert.Equal(t, workflow.Idle, snap.Status.State)
	assert.Nil(t, snap.View.Result)
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)

	resp := postJSON(t, browser, srv.URL+"/api/submit", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorResponse](t, resp)
	assert.Equal(t, apperr.KindValidation, body.Kind)
	assert.Equal(t, "Please select an image first", body.Message)

	resp = postJSON(t, browser, srv.URL+"/api/feedback", map[string]string{"judgment": "correct"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperr.KindState, decode[errorResponse](t, resp).Kind)

	resp = postJSON(t, browser, srv.URL+"/api/language", map[string]string{"language": "de"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, browser, srv.URL+"/api/location", map[string]float64{"latitude": 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	r, err := browser.Do(uploadRequest(t, srv.URL, pngBytes(t)))
	require.NoError(t, err)
	r.Body.Close()
	srv.pred.mu.Lock()
	srv.pred.err = errors.New("connection refused")
	srv.pred.mu.Unlock()

	resp = postJSON(t, browser, srv.URL+"/api/submit", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	body = decode[errorResponse](t, resp)
	assert.Equal(t, apperr.KindPrediction, body.Kind)
	assert.Equal(t, "An error occurred. Please try again.", body.Message)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)

	resp, err := browser.Get(srv.URL + "/api/submit")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = browser.Post(srv.URL+"/api/language", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = browser.Post(srv.URL+"/api/acquire", "text/plain", bytes.NewBufferString("not multipart"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, browser, srv.URL+"/api/acquire", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAcquireFromURL(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)
	data := pngBytes(t)

	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/leaves/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer images.Close()

	resp := postJSON(t, browser, srv.URL+"/api/acquire", map[string]any{"image_url": images.URL + "/leaves/spot.png", "enhance_contrast": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acquired := decode[acquireResponse](t, resp)
	assert.Equal(t, "spot.png", acquired.Filename)
	assert.Equal(t, len(data), acquired.Bytes)

	resp = postJSON(t, browser, srv.URL+"/api/acquire", map[string]any{"image_url": "file:///etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, browser, srv.URL+"/api/acquire", map[string]any{"image_url": images.URL + "/leaves/missing.png"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCookieStoreOptions(t *testing.T) {
	store := NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), 30*time.Minute)
	require.NotNil(t, store.Options)
	assert.False(t, store.Options.Secure)
	assert.True(t, store.Options.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, store.Options.SameSite)
	assert.Equal(t, 1800, store.Options.MaxAge)
	assert.Equal(t, "/", store.Options.Path)
}

func TestBrowserKeepsItsClientOverPlainHTTP(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)

	r, err := browser.Do(uploadRequest(t, srv.URL, pngBytes(t)))
	require.NoError(t, err)
	r.Body.Close()

	resp, err := browser.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, workflow.Ready, decode[app.Snapshot](t, resp).Status.State)
	assert.Equal(t, 1, srv.store.Count())
}

func TestBrowsersGetSeparateClients(t *testing.T) {
	srv := newTestServer(t)
	a, b := newBrowser(t), newBrowser(t)

	r, err := a.Do(uploadRequest(t, srv.URL, pngBytes(t)))
	require.NoError(t, err)
	r.Body.Close()

	resp, err := a.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	snapA := decode[app.Snapshot](t, resp)
	assert.Equal(t, workflow.Ready, snapA.Status.State)

	resp, err = b.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	snapB := decode[app.Snapshot](t, resp)
	assert.Equal(t, workflow.Idle, snapB.Status.State)
	assert.NotEqual(t, snapA.ClientID, snapB.ClientID)

	resp, err = a.Get(srv.URL + "/api/sessions")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Len(t, decode[[]sessionSummary](t, resp), 2)
	assert.Equal(t, 2, srv.store.Count())
}

func TestExpiredClientIsReplaced(t *testing.T) {
	srv := newTestServer(t)
	browser := newBrowser(t)

	resp, err := browser.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	first := decode[app.Snapshot](t, resp).ClientID

	srv.store.Delete(first)

	resp, err = browser.Get(srv.URL + "/api/view")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, first, decode[app.Snapshot](t, resp).ClientID)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("x", "bad"), http.StatusBadRequest},
		{&apperr.Error{Kind: apperr.KindState}, http.StatusConflict},
		{&apperr.Error{Kind: apperr.KindInFlight}, http.StatusConflict},
		{&apperr.Error{Kind: apperr.KindStale}, http.StatusConflict},
		{&apperr.Error{Kind: apperr.KindPrediction}, http.StatusBadGateway},
		{&apperr.Error{Kind: apperr.KindFeedback}, http.StatusBadGateway},
		{&apperr.Error{Kind: apperr.KindCamera}, http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}
