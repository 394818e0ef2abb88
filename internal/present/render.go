// Package present derives renderable view-state from result payloads. All
// functions are pure: they never mutate their inputs or touch the network.
package present

import (
	"math"
	"strings"

	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// Tier is a confidence band.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// MaxAlternatives caps the low-confidence carousel.
const MaxAlternatives = 3

// TierFor bands a rounded confidence percentage.
func TierFor(confidence int) Tier {
	switch {
	case confidence >= 70:
		return TierHigh
	case confidence >= 50:
		return TierMedium
	default:
		return TierLow
	}
}

// RoundConfidence rounds a probability percentage half away from zero.
func RoundConfidence(p float64) int {
	return int(math.Round(p))
}

// ResultView is everything needed to display one result set.
type ResultView struct {
	Language      string           `json:"language" yaml:"language"`
	Class         string           `json:"class" yaml:"class"`
	DiseaseName   string           `json:"disease_name" yaml:"disease_name"`
	Confidence    int              `json:"confidence" yaml:"confidence"`
	Tier          Tier             `json:"tier" yaml:"tier"`
	Icon          string           `json:"icon" yaml:"icon"`
	Severity      Severity         `json:"severity" yaml:"severity"`
	SeverityLabel string           `json:"severity_label" yaml:"severity_label"`
	LowConfidence bool             `json:"low_confidence" yaml:"low_confidence"`
	Warning       string           `json:"warning,omitempty" yaml:"warning,omitempty"`
	Alternatives  []Alternative    `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
	Prevention    []PreventionStep `json:"prevention" yaml:"prevention"`
	NoPrevention  string           `json:"no_prevention,omitempty" yaml:"no_prevention,omitempty"`
	ImagePath     string           `json:"image_path" yaml:"image_path"`
	Labels        ResultLabels     `json:"labels" yaml:"labels"`
}

// Alternative is one carousel entry.
type Alternative struct {
	Class      string `json:"class" yaml:"class"`
	Name       string `json:"name" yaml:"name"`
	Confidence int    `json:"confidence" yaml:"confidence"`
	Tier       Tier   `json:"tier" yaml:"tier"`
	Icon       string `json:"icon" yaml:"icon"`
	Active     bool   `json:"active" yaml:"active"`
}

// PreventionStep is one accordion entry.
type PreventionStep struct {
	Title    string `json:"title" yaml:"title"`
	Text     string `json:"text" yaml:"text"`
	Icon     string `json:"icon" yaml:"icon"`
	Expanded bool   `json:"expanded" yaml:"expanded"`
}

// ResultLabels are the localized headings around a result.
type ResultLabels struct {
	PredictionResult string `json:"prediction_result" yaml:"prediction_result"`
	Confidence       string `json:"confidence" yaml:"confidence"`
	PreventionSteps  string `json:"prevention_steps" yaml:"prevention_steps"`
	SpeakResults     string `json:"speak_results" yaml:"speak_results"`
	FeedbackTitle    string `json:"feedback_title" yaml:"feedback_title"`
	FeedbackPrompt   string `json:"feedback_prompt" yaml:"feedback_prompt"`
	Correct          string `json:"correct" yaml:"correct"`
	Incorrect        string `json:"incorrect" yaml:"incorrect"`
}

// Render maps a result set into view-state for lang. A nil or empty result
// set renders as nil.
func Render(rs *models.ResultSet, lang string) *ResultView {
	if rs == nil || len(rs.Predictions) == 0 {
		return nil
	}
	top := rs.Predictions[0]
	confidence := RoundConfidence(top.Probability)
	severity := SeverityOf(top.Class, englishName(top))

	view := &ResultView{
		Language:      lang,
		Class:         top.Class,
		DiseaseName:   DisplayName(top, lang),
		Confidence:    confidence,
		Tier:          TierFor(confidence),
		Icon:          DiseaseIcon(top.Class),
		Severity:      severity,
		SeverityLabel: severityLabel(severity, lang),
		LowConfidence: rs.LowConfidence,
		ImagePath:     rs.DisplayImagePath(),
		Labels:        resultLabels(lang),
	}

	if rs.LowConfidence {
		view.Warning = i18n.T(lang, i18n.KeyLowConfidenceWarning)
		view.Alternatives = alternatives(rs.Predictions, lang)
	}

	view.Prevention = preventionSteps(PreventionFor(top, lang))
	if len(view.Prevention) == 0 {
		view.NoPrevention = i18n.T(lang, i18n.KeyNoPreventionSteps)
	}
	return view
}

// DisplayName prefers the catalog name in lang, then the name the server
// sent, then a readable form of the class label.
func DisplayName(p models.Prediction, lang string) string {
	if name, ok := i18n.DiseaseName(lang, p.Class); ok {
		return name
	}
	if p.Name != "" {
		return p.Name
	}
	return i18n.FormatDiseaseName(p.Class)
}

// PreventionFor prefers the catalog steps in lang over the server's.
func PreventionFor(p models.Prediction, lang string) []string {
	if steps, ok := i18n.Prevention(lang, p.Class); ok {
		return steps
	}
	return p.Prevention
}

func englishName(p models.Prediction) string {
	if name, ok := i18n.DiseaseName(i18n.Default, p.Class); ok {
		return name
	}
	if p.Name != "" {
		return p.Name
	}
	return i18n.FormatDiseaseName(p.Class)
}

func alternatives(preds []models.Prediction, lang string) []Alternative {
	n := min(len(preds), MaxAlternatives)
	out := make([]Alternative, 0, n)
	for i, p := range preds[:n] {
		c := RoundConfidence(p.Probability)
		out = append(out, Alternative{
			Class:      p.Class,
			Name:       DisplayName(p, lang),
			Confidence: c,
			Tier:       TierFor(c),
			Icon:       DiseaseIcon(p.Class),
			Active:     i == 0,
		})
	}
	return out
}

func preventionSteps(steps []string) []PreventionStep {
	out := make([]PreventionStep, 0, len(steps))
	for i, step := range steps {
		out = append(out, PreventionStep{
			Title:    stepTitle(step),
			Text:     step,
			Icon:     PreventionIcon(step),
			Expanded: i == 0,
		})
	}
	return out
}

// stepTitle is the first three words of a step, with an ellipsis when cut.
func stepTitle(step string) string {
	words := strings.Split(step, " ")
	if len(words) <= 3 {
		return step
	}
	return strings.Join(words[:3], " ") + "..."
}

func severityLabel(s Severity, lang string) string {
	switch s {
	case SeverityHigh:
		return i18n.T(lang, i18n.KeySeverityHigh)
	case SeverityLow:
		return i18n.T(lang, i18n.KeySeverityLow)
	default:
		return i18n.T(lang, i18n.KeySeverityMedium)
	}
}

func resultLabels(lang string) ResultLabels {
	return ResultLabels{
		PredictionResult: i18n.T(lang, i18n.KeyPredictionResult),
		Confidence:       i18n.T(lang, i18n.KeyConfidence),
		PreventionSteps:  i18n.T(lang, i18n.KeyPreventionSteps),
		SpeakResults:     i18n.T(lang, i18n.KeySpeakResults),
		FeedbackTitle:    i18n.T(lang, i18n.KeyFeedbackTitle),
		FeedbackPrompt:   i18n.T(lang, i18n.KeyFeedbackDescription),
		Correct:          i18n.T(lang, i18n.KeyCorrectPrediction),
		Incorrect:        i18n.T(lang, i18n.KeyIncorrectPrediction),
	}
}
