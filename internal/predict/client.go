// Package predict talks to the remote leaf classification service.
package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// Client submits images to {BaseURL}/predict.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type response struct {
	Results            []models.Prediction `json:"results"`
	LowConfidence      bool                `json:"low_confidence"`
	ImagePath          string              `json:"image_path"`
	ProcessedImagePath string              `json:"processed_image_path"`
	Error              string              `json:"error"`
}

// Predict uploads the image and decodes the ranked result set. Every
// failure is returned as a prediction error.
func (c *Client) Predict(ctx context.Context, req models.PredictionRequest) (*models.ResultSet, error) {
	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/predict", body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", fmt.Errorf("failed to read response: %w", err))
	}

	slog.Debug("Prediction response", "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))

	var decoded response
	decodeErr := json.Unmarshal(respBody, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && decoded.Error != "" {
			return nil, apperr.New(apperr.KindPrediction, "predict", "%s (status %d)", decoded.Error, resp.StatusCode)
		}
		return nil, apperr.New(apperr.KindPrediction, "predict", "received non-200 status code: %d - %s", resp.StatusCode, truncate(string(respBody), 200))
	}
	if decodeErr != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", fmt.Errorf("failed to decode response: %w", decodeErr))
	}
	if decoded.Error != "" {
		return nil, apperr.New(apperr.KindPrediction, "predict", "%s", decoded.Error)
	}

	rs, err := toResultSet(decoded)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", err)
	}
	rs.ID = req.RequestID
	rs.Language = req.Language
	return rs, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func toResultSet(r response) (*models.ResultSet, error) {
	if len(r.Results) == 0 {
		return nil, fmt.Errorf("malformed response: no results")
	}
	for i, p := range r.Results {
		if p.Class == "" {
			return nil, fmt.Errorf("malformed response: result %d has no class", i)
		}
		if p.Probability < 0 || p.Probability > 100 {
			return nil, fmt.Errorf("malformed response: probability %.2f out of range for %s", p.Probability, p.Class)
		}
	}
	preds := append([]models.Prediction(nil), r.Results...)
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})
	return &models.ResultSet{
		Predictions:        preds,
		LowConfidence:      r.LowConfidence,
		ImagePath:          r.ImagePath,
		ProcessedImagePath: r.ProcessedImagePath,
		ReceivedAt:         time.Now(),
	}, nil
}

func encodeRequest(req models.PredictionRequest) (io.Reader, string, error) {
	if len(req.Image) == 0 {
		return nil, "", fmt.Errorf("no image data")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "image.jpg"
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", err
	}

	lang := req.Language
	if lang == "" {
		lang = "en"
	}
	fields := [][2]string{
		{"enhance_contrast", strconv.FormatBool(req.Options.EnhanceContrast)},
		{"auto_crop", strconv.FormatBool(req.Options.AutoCrop)},
		{"language", lang},
	}
	if req.Geo != nil {
		fields = append(fields,
			[2]string{"latitude", strconv.FormatFloat(req.Geo.Latitude, 'f', -1, 64)},
			[2]string{"longitude", strconv.FormatFloat(req.Geo.Longitude, 'f', -1, 64)},
		)
		if req.Geo.Name != "" {
			fields = append(fields, [2]string{"location_name", req.Geo.Name})
		}
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
