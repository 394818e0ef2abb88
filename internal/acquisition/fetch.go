package acquisition

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// FromURL downloads an image and treats it as an upload.
func FromURL(ctx context.Context, client *http.Client, imageURL string, opts models.ProcessingOptions) (*Session, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, apperr.Validation("acquire", "invalid image URL %q", imageURL)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Op: "acquire", Message: "failed to download image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Validation("acquire", "failed to download image: HTTP %d", resp.StatusCode)
	}

	filename := path.Base(u.Path)
	if filename == "." || filename == "/" {
		filename = ""
	}
	return ReadUpload(resp.Body, filename, resp.Header.Get("Content-Type"), opts)
}
