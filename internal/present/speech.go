package present

import (
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// Utterance is text to hand to a speech synthesizer.
type Utterance struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Speech composes the spoken summary of the top prediction.
func Speech(rs *models.ResultSet, lang string) (Utterance, bool) {
	if rs == nil || len(rs.Predictions) == 0 {
		return Utterance{}, false
	}
	top := rs.Predictions[0]

	var b strings.Builder
	b.WriteString(DisplayName(top, lang))
	b.WriteString(". ")
	fmt.Fprintf(&b, "%s: %d%%. ", i18n.T(lang, i18n.KeyPredictionResult), RoundConfidence(top.Probability))

	steps := PreventionFor(top, lang)
	if len(steps) > 0 {
		b.WriteString(i18n.T(lang, i18n.KeyPreventionSteps))
		b.WriteString(": ")
		for i, step := range steps {
			fmt.Fprintf(&b, "%d. %s. ", i+1, step)
		}
	}
	return Utterance{Text: strings.TrimSpace(b.String()), Lang: i18n.SpeechLanguage(lang)}, true
}
