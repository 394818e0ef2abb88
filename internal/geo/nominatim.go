package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultNominatimURL is the public OpenStreetMap reverse geocoder.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// UnknownLocation is reported when the geocoder has no usable place name.
const UnknownLocation = "Unknown Location"

// Nominatim resolves coordinates to a place name. Requests share one limiter
// and results are cached per ~100m cell, so it is safe to share between
// clients.
type Nominatim struct {
	BaseURL   string
	HTTP      *http.Client
	UserAgent string

	limiter *rate.Limiter
	cache   *cache.Cache
}

// NewNominatim returns a reverse geocoder limited to one request per second.
func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      &http.Client{Timeout: 10 * time.Second},
		UserAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		cache:     cache.New(24*time.Hour, time.Hour),
	}
}

type reverseResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
	Error string `json:"error"`
}

// Reverse returns the most specific place name for lat/lon.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%.3f,%.3f", lat, lon)
	if name, ok := n.cache.Get(key); ok {
		return name.(string), nil
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "10")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if n.UserAgent != "" {
		req.Header.Set("User-Agent", n.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding failed: HTTP %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}
	if body.Error != "" {
		return "", fmt.Errorf("reverse geocoding failed: %s", body.Error)
	}

	name := UnknownLocation
	for _, candidate := range []string{body.Address.City, body.Address.Town, body.Address.State, body.Address.Country} {
		if candidate != "" {
			name = candidate
			break
		}
	}
	n.cache.SetDefault(key, name)
	return name, nil
}
