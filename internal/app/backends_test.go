package app

import (
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/config"
	"github.com/lehigh-university-libraries/cropscan/internal/diagnosis"
	"github.com/lehigh-university-libraries/cropscan/internal/feedback"
	"github.com/lehigh-university-libraries/cropscan/internal/geo"
	"github.com/lehigh-university-libraries/cropscan/internal/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settings() *config.Settings {
	return &config.Settings{
		PredictionURL: "http://classifier:5000",
		FeedbackURL:   "http://classifier:5000",
		Language:      "hi",
		Timeout:       5 * time.Second,
		Backend:       config.BackendRemote,
		UserAgent:     "cropscan-test",
		Camera:        config.Camera{MaxDimension: 640},
	}
}

func TestOptionsFromSettingsRemote(t *testing.T) {
	opts, err := OptionsFromSettings(settings())
	require.NoError(t, err)

	pc, ok := opts.Predictor.(*predict.Client)
	require.True(t, ok)
	assert.Equal(t, "http://classifier:5000", pc.BaseURL)
	assert.Equal(t, "cropscan-test", pc.UserAgent)

	fc, ok := opts.Feedback.(*feedback.Client)
	require.True(t, ok)
	assert.Equal(t, "cropscan-test", fc.UserAgent)

	assert.Equal(t, "hi", opts.Language)
	assert.Equal(t, 640, opts.MaxFrameDimension)
	assert.False(t, opts.Geo)
	assert.Nil(t, opts.Reverser)
}

func TestOptionsFromSettingsGeo(t *testing.T) {
	s := settings()
	s.Geo = config.Geo{Enabled: true, Latitude: 40.6, Longitude: -75.4, NominatimURL: "http://nominatim.test"}

	opts, err := OptionsFromSettings(s)
	require.NoError(t, err)
	assert.True(t, opts.Geo)
	assert.Equal(t, geo.StaticPosition{Latitude: 40.6, Longitude: -75.4}, opts.Position)
	require.IsType(t, &geo.Nominatim{}, opts.Reverser)
	assert.Equal(t, "http://nominatim.test", opts.Reverser.(*geo.Nominatim).BaseURL)
}

func TestNewPredictorLLM(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "")
	s := settings()
	s.Backend = config.BackendOllama

	p, model, err := NewPredictor(s)
	require.NoError(t, err)
	assert.IsType(t, &diagnosis.Service{}, p)
	assert.Equal(t, diagnosis.DefaultModel("ollama"), model)

	s.Model = "llava:34b"
	p, model, err = NewPredictor(s)
	require.NoError(t, err)
	assert.Equal(t, "llava:34b", model)
	assert.Equal(t, "llava:34b", p.(*diagnosis.Service).Model)
}
