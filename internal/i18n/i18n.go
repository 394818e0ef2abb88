// Package i18n holds the static translation tables: interface labels,
// disease display names and prevention steps for every supported language.
package i18n

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Key identifies an interface label.
type Key string

const (
	KeyPredictionResult     Key = "predictionResult"
	KeyConfidence           Key = "confidence"
	KeyPreventionSteps      Key = "preventionSteps"
	KeyLowConfidenceWarning Key = "lowConfidenceWarning"
	KeyNoPreventionSteps    Key = "noPreventionSteps"
	KeyAnalyzing            Key = "analyzing"
	KeyError                Key = "error"
	KeySelectImage          Key = "selectImage"
	KeyCameraError          Key = "cameraError"
	KeyCameraSwitchError    Key = "cameraSwitchError"
	KeySpeakResults         Key = "speakResults"
	KeySeverityHigh         Key = "severityHigh"
	KeySeverityMedium       Key = "severityMedium"
	KeySeverityLow          Key = "severityLow"
	KeyFeedbackTitle        Key = "feedbackTitle"
	KeyFeedbackDescription  Key = "feedbackDescription"
	KeyCorrectPrediction    Key = "correctPrediction"
	KeyIncorrectPrediction  Key = "incorrectPrediction"
	KeyCorrectionPrompt     Key = "correctionPrompt"
	KeyContributeToDataset  Key = "contributeToDataset"
	KeyFeedbackThanks       Key = "feedbackThanks"
	KeyFeedbackError        Key = "feedbackError"
	KeyInsightsTitle        Key = "insightsTitle"
	KeyCommonDiseasesTitle  Key = "commonDiseasesTitle"
	KeySeasonalTrendsTitle  Key = "seasonalTrendsTitle"
	KeyRecentSubmissions    Key = "recentSubmissionsTitle"
	KeyInsightsNote         Key = "insightsNote"
	KeyNoInsightsAvailable  Key = "noInsightsAvailable"
	KeySubmittedOn          Key = "submittedOn"
	KeyLocation             Key = "location"
	KeySelectDisease        Key = "selectDisease"
)

// Default is the fallback language.
const Default = "en"

type disease struct {
	names      map[string]string
	prevention map[string][]string
}

var (
	supported = []language.Tag{language.English, language.Spanish, language.Hindi}
	matcher   = language.NewMatcher(supported)
)

// Supported returns the supported language codes, default first.
func Supported() []string {
	return []string{"en", "es", "hi"}
}

// Match maps any BCP 47 code or Accept-Language value onto a supported
// language. ok is false when nothing matched better than the default.
func Match(code string) (lang string, ok bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Default, false
	}
	tags, _, err := language.ParseAcceptLanguage(code)
	if err != nil || len(tags) == 0 {
		return Default, false
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default, false
	}
	return Supported()[idx], true
}

// T returns the label for key in lang, falling back to English and then to
// the key itself.
func T(lang string, key Key) string {
	if v, ok := labels[lang][key]; ok {
		return v
	}
	if v, ok := labels[Default][key]; ok {
		return v
	}
	return string(key)
}

// Labels returns a copy of every label in lang.
func Labels(lang string) map[string]string {
	table, ok := labels[lang]
	if !ok {
		table = labels[Default]
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		out[string(k)] = v
	}
	return out
}

// Classes returns the known classifier labels in sorted order.
func Classes() []string {
	out := make([]string, 0, len(diseases))
	for class := range diseases {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}

// Known reports whether class is in the catalog.
func Known(class string) bool {
	_, ok := diseases[class]
	return ok
}

// DiseaseName returns the localized display name for class. ok is false when
// the class is not in the catalog.
func DiseaseName(lang, class string) (string, bool) {
	d, ok := diseases[class]
	if !ok {
		return "", false
	}
	if name, ok := d.names[lang]; ok {
		return name, true
	}
	return d.names[Default], true
}

// Prevention returns the localized prevention steps for class.
func Prevention(lang, class string) ([]string, bool) {
	d, ok := diseases[class]
	if !ok {
		return nil, false
	}
	steps, ok := d.prevention[lang]
	if !ok {
		steps = d.prevention[Default]
	}
	return append([]string(nil), steps...), true
}

// FormatDiseaseName turns a raw class label into readable text:
// "Tomato__leaf_mold" becomes "Tomato - leaf mold".
func FormatDiseaseName(class string) string {
	return strings.ReplaceAll(strings.ReplaceAll(class, "__", " - "), "_", " ")
}

// TranslatedName resolves a class or free-form disease key for display.
func TranslatedName(lang, key string) string {
	if name, ok := DiseaseName(lang, key); ok {
		return name
	}
	return FormatDiseaseName(key)
}

// SpeechLanguage returns the voice locale for lang.
func SpeechLanguage(lang string) string {
	switch lang {
	case "es":
		return "es-ES"
	case "hi":
		return "hi-IN"
	default:
		return "en-US"
	}
}
