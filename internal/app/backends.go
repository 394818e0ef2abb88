package app

import (
	"fmt"

	"github.com/lehigh-university-libraries/cropscan/internal/config"
	"github.com/lehigh-university-libraries/cropscan/internal/diagnosis"
	"github.com/lehigh-university-libraries/cropscan/internal/feedback"
	"github.com/lehigh-university-libraries/cropscan/internal/geo"
	"github.com/lehigh-university-libraries/cropscan/internal/predict"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
)

// NewPredictor builds the prediction collaborator for the configured
// backend. model is the LLM model in use, or "" for the remote server.
func NewPredictor(s *config.Settings) (p workflow.Predictor, model string, err error) {
	if s.Backend == config.BackendRemote {
		c := predict.NewClient(s.PredictionURL, s.Timeout)
		c.UserAgent = s.UserAgent
		return c, "", nil
	}

	provider, model, err := diagnosis.NewProvider(s.Backend)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create %s provider: %w", s.Backend, err)
	}
	if s.Model != "" {
		model = s.Model
	}
	return diagnosis.NewService(provider, model), model, nil
}

// OptionsFromSettings wires every collaborator except the camera.
func OptionsFromSettings(s *config.Settings) (Options, error) {
	predictor, _, err := NewPredictor(s)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Predictor:         predictor,
		Language:          s.Language,
		MaxFrameDimension: s.Camera.MaxDimension,
		Geo:               s.Geo.Enabled,
	}
	if s.FeedbackURL != "" {
		fc := feedback.NewClient(s.FeedbackURL, s.Timeout)
		fc.UserAgent = s.UserAgent
		opts.Feedback = fc
	}
	if s.Geo.Enabled {
		if s.Geo.HasPosition() {
			opts.Position = geo.StaticPosition{Latitude: s.Geo.Latitude, Longitude: s.Geo.Longitude}
		}
		if s.Geo.NominatimURL != "" {
			opts.Reverser = geo.NewNominatim(s.Geo.NominatimURL, s.UserAgent)
		}
	}
	return opts, nil
}
