// Package diagnosis classifies leaf images with a vision LLM instead of the
// remote prediction server.
package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/gemini"
	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/ollama"
	"github.com/lehigh-university-libraries/cropscan/internal/openai"
	"github.com/lehigh-university-libraries/cropscan/internal/providers"
)

const (
	// MaxResults is how many ranked candidates are kept.
	MaxResults = 3
	// LowConfidenceThreshold matches the prediction server's policy.
	LowConfidenceThreshold = 70.0
)

// Service implements workflow.Predictor on top of an LLM provider.
type Service struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
}

func NewService(provider providers.Provider, model string) *Service {
	return &Service{Provider: provider, Model: model, Temperature: 0.1}
}

// NewProvider returns the provider named by backend with its default model.
func NewProvider(backend string) (providers.Provider, string, error) {
	switch backend {
	case "openai":
		return openai.New(), DefaultModel(backend), nil
	case "ollama":
		return ollama.New(), DefaultModel(backend), nil
	case "gemini":
		return gemini.New(), DefaultModel(backend), nil
	default:
		return nil, "", fmt.Errorf("unsupported provider: %s", backend)
	}
}

// DefaultModel reads {PROVIDER}_MODEL, falling back to a vision-capable model.
func DefaultModel(backend string) string {
	var env, fallback string
	switch backend {
	case "openai":
		env, fallback = "OPENAI_MODEL", "gpt-4o"
	case "ollama":
		env, fallback = "OLLAMA_MODEL", "llava:13b"
	case "gemini":
		env, fallback = "GEMINI_MODEL", "gemini-1.5-flash"
	default:
		return ""
	}
	if model := os.Getenv(env); model != "" {
		return model
	}
	return fallback
}

// Predict asks the model to classify the leaf image.
func (s *Service) Predict(ctx context.Context, req models.PredictionRequest) (*models.ResultSet, error) {
	if len(req.Image) == 0 {
		return nil, apperr.New(apperr.KindPrediction, "predict", "no image data")
	}

	start := time.Now()
	raw, err := s.Provider.Generate(ctx, providers.Config{
		Model:       s.Model,
		Temperature: s.Temperature,
		Prompt:      buildPrompt(req.Geo),
		Image:       req.Image,
		ImageMIME:   req.ContentType,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", err)
	}

	preds, err := parseResponse(raw)
	if err != nil {
		slog.Warn("Unusable classification reply", "model", s.Model, "err", err)
		return nil, apperr.Wrap(apperr.KindPrediction, "predict", err)
	}

	lang := req.Language
	if lang == "" {
		lang = i18n.Default
	}
	for i := range preds {
		preds[i].Name, _ = i18n.DiseaseName(lang, preds[i].Class)
		preds[i].Prevention, _ = i18n.Prevention(lang, preds[i].Class)
	}

	slog.Info("Classified leaf image", "model", s.Model, "top", preds[0].Class, "probability", preds[0].Probability, "duration", time.Since(start))
	return &models.ResultSet{
		ID:            req.RequestID,
		Predictions:   preds,
		LowConfidence: preds[0].Probability < LowConfidenceThreshold,
		Language:      lang,
		ReceivedAt:    time.Now(),
	}, nil
}

func buildPrompt(geo *models.GeoContext) string {
	var classes strings.Builder
	for _, class := range i18n.Classes() {
		name, _ := i18n.DiseaseName(i18n.Default, class)
		fmt.Fprintf(&classes, "- %s (%s)\n", class, name)
	}

	location := ""
	if geo != nil && geo.Name != "" {
		location = fmt.Sprintf("\nThe photo was taken near %s.\n", geo.Name)
	}

	return fmt.Sprintf(`You are a plant pathologist. Classify the crop leaf in the attached photo.
%s
Choose only from these class labels:
%s
Respond with ONLY a JSON object in the following format:

{"results": [{"class": "<label>", "probability": <0-100>}]}

List up to %d candidates, most likely first. Probabilities are percentages and
should reflect how certain you are.`, location, classes.String(), MaxResults)
}

// parseResponse turns the model's reply into ranked, known predictions.
func parseResponse(response string) ([]models.Prediction, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var reply struct {
		Results []struct {
			Class       string  `json:"class"`
			Probability float64 `json:"probability"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(response), &reply); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	// Some models answer with fractions.
	fractions := true
	for _, r := range reply.Results {
		if r.Probability > 1 {
			fractions = false
			break
		}
	}

	seen := make(map[string]bool, len(reply.Results))
	preds := make([]models.Prediction, 0, len(reply.Results))
	for _, r := range reply.Results {
		class := strings.TrimSpace(r.Class)
		if !i18n.Known(class) {
			slog.Debug("Dropping unknown class", "class", class)
			continue
		}
		if seen[class] {
			continue
		}
		seen[class] = true

		p := r.Probability
		if fractions {
			p *= 100
		}
		p = math.Max(0, math.Min(100, p))
		preds = append(preds, models.Prediction{Class: class, Probability: math.Round(p*100) / 100})
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("no known classes in response")
	}

	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})
	if len(preds) > MaxResults {
		preds = preds[:MaxResults]
	}
	return preds, nil
}
