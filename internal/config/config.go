// Package config layers cropscan settings: defaults, an optional
// cropscan.yaml, CROPSCAN_* environment variables, then bound flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CROPSCAN"

// Backends a Predictor can be built from.
const (
	BackendRemote = "remote"
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

type Geo struct {
	Enabled      bool    `mapstructure:"enabled"`
	Latitude     float64 `mapstructure:"latitude"`
	Longitude    float64 `mapstructure:"longitude"`
	NominatimURL string  `mapstructure:"nominatim_url"`
}

// HasPosition reports whether fixed coordinates were configured.
func (g Geo) HasPosition() bool {
	return g.Latitude != 0 || g.Longitude != 0
}

type Camera struct {
	EnvironmentIndex int `mapstructure:"environment_index"`
	UserIndex        int `mapstructure:"user_index"`
	MaxDimension     int `mapstructure:"max_dimension"`
}

type Serve struct {
	Port       string        `mapstructure:"port"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	SessionKey string        `mapstructure:"session_key"`
}

type Settings struct {
	PredictionURL string        `mapstructure:"prediction_url"`
	FeedbackURL   string        `mapstructure:"feedback_url"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Backend       string        `mapstructure:"backend"`
	Model         string        `mapstructure:"model"`
	UserAgent     string        `mapstructure:"user_agent"`
	LogLevel      string        `mapstructure:"log_level"`
	Geo           Geo           `mapstructure:"geo"`
	Camera        Camera        `mapstructure:"camera"`
	Serve         Serve         `mapstructure:"serve"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("prediction_url", "http://localhost:5000")
	v.SetDefault("feedback_url", "")
	v.SetDefault("language", i18n.Default)
	v.SetDefault("timeout", 60*time.Second)
	v.SetDefault("backend", BackendRemote)
	v.SetDefault("model", "")
	v.SetDefault("user_agent", "cropscan/1.0")
	v.SetDefault("log_level", "info")

	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.latitude", 0.0)
	v.SetDefault("geo.longitude", 0.0)
	v.SetDefault("geo.nominatim_url", "https://nominatim.openstreetmap.org")

	v.SetDefault("camera.environment_index", 0)
	v.SetDefault("camera.user_index", 1)
	v.SetDefault("camera.max_dimension", 1280)

	v.SetDefault("serve.port", "8888")
	v.SetDefault("serve.session_ttl", 30*time.Minute)
	v.SetDefault("serve.session_key", "")
}

// New returns a viper instance with defaults and environment binding.
// configFile may be empty, in which case cropscan.yaml is searched for in
// the working directory and $HOME/.config/cropscan.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("cropscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cropscan")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	}
	return v, nil
}

// FlagKeys maps command-line flags to the config keys they override.
var FlagKeys = map[string]string{
	"prediction-url": "prediction_url",
	"feedback-url":   "feedback_url",
	"language":       "language",
	"timeout":        "timeout",
	"backend":        "backend",
	"model":          "model",
	"log-level":      "log_level",
	"geo":            "geo.enabled",
	"max-dimension":  "camera.max_dimension",
	"port":           "serve.port",
	"session-ttl":    "serve.session_ttl",
	"session-key":    "serve.session_key",
}

// BindFlags binds every flag in keys that flags defines. Flags a command
// does not define are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load decodes and validates the settings.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) normalize() error {
	lang, ok := i18n.Match(s.Language)
	if !ok && s.Language != "" {
		slog.Warn("Unsupported language, using default", "language", s.Language, "default", lang)
	}
	s.Language = lang

	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case BackendRemote, BackendOpenAI, BackendOllama, BackendGemini:
	default:
		return fmt.Errorf("invalid backend %q: must be one of remote, openai, ollama, gemini", s.Backend)
	}

	s.PredictionURL = strings.TrimRight(s.PredictionURL, "/")
	if s.Backend == BackendRemote {
		if err := checkURL("prediction_url", s.PredictionURL); err != nil {
			return err
		}
	}
	if s.FeedbackURL == "" {
		s.FeedbackURL = s.PredictionURL
	}
	s.FeedbackURL = strings.TrimRight(s.FeedbackURL, "/")
	if s.FeedbackURL != "" {
		if err := checkURL("feedback_url", s.FeedbackURL); err != nil {
			return err
		}
	}

	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.Geo.Latitude < -90 || s.Geo.Latitude > 90 || s.Geo.Longitude < -180 || s.Geo.Longitude > 180 {
		return fmt.Errorf("geo position out of range: %f,%f", s.Geo.Latitude, s.Geo.Longitude)
	}
	if s.Camera.MaxDimension < 0 {
		s.Camera.MaxDimension = 0
	}
	if s.Serve.SessionTTL <= 0 {
		s.Serve.SessionTTL = 30 * time.Minute
	}
	return nil
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}

// LogLevel parses level names accepted by --log-level.
func LogLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return l, nil
}
