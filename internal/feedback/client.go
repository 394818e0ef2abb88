// Package feedback sends correctness judgments to the remote service and
// returns the community insights it replies with.
package feedback

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
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// Client posts feedback to {BaseURL}/feedback.
type Client struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// SendFeedback submits one judgment. The server may answer 200 with
// success=false, which is reported as a feedback error.
func (c *Client) SendFeedback(ctx context.Context, req models.FeedbackRequest) (*models.FeedbackResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeForm(w, req); err != nil {
		return nil, apperr.Wrap(apperr.KindFeedback, "feedback", fmt.Errorf("failed to encode form: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/feedback", &buf)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFeedback, "feedback", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFeedback, "feedback", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindFeedback, "feedback", fmt.Errorf("failed to read response: %w", err))
	}

	var out models.FeedbackResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Message != "" {
			return nil, apperr.New(apperr.KindFeedback, "feedback", "%s (status %d)", out.Message, resp.StatusCode)
		}
		return nil, apperr.New(apperr.KindFeedback, "feedback", "received non-200 status code: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, apperr.Wrap(apperr.KindFeedback, "feedback", fmt.Errorf("failed to decode response: %w", decodeErr))
	}
	if out.Success != nil && !*out.Success {
		msg := out.Message
		if msg == "" {
			msg = "server rejected feedback"
		}
		return nil, apperr.New(apperr.KindFeedback, "feedback", "%s", msg)
	}

	slog.Debug("Feedback accepted", "original_prediction", req.OriginalPrediction, "is_correct", req.IsCorrect, "insights", out.Insights != nil)
	return &out, nil
}

func writeForm(w *multipart.Writer, req models.FeedbackRequest) error {
	fields := [][2]string{
		{"original_prediction", req.OriginalPrediction},
		{"confidence", strconv.FormatFloat(req.Confidence, 'f', -1, 64)},
		{"is_correct", strconv.FormatBool(req.IsCorrect)},
	}
	if !req.IsCorrect && req.CorrectedDisease != "" {
		fields = append(fields, [2]string{"corrected_disease", req.CorrectedDisease})
	}
	contribute := req.Contribute && len(req.Image) > 0
	fields = append(fields, [2]string{"contribute_to_dataset", strconv.FormatBool(contribute)})
	if req.Geo != nil {
		fields = append(fields,
			[2]string{"latitude", strconv.FormatFloat(req.Geo.Latitude, 'f', -1, 64)},
			[2]string{"longitude", strconv.FormatFloat(req.Geo.Longitude, 'f', -1, 64)},
			[2]string{"location_name", req.Geo.Name},
		)
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	if contribute {
		filename := req.Filename
		if filename == "" {
			filename = "image.jpg"
		}
		contentType := req.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(req.Image); err != nil {
			return err
		}
	}
	return w.Close()
}
