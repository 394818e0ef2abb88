package present

import (
	"errors"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
)

// ErrorMessage returns the user-facing text for err in lang.
func ErrorMessage(err error, lang string) string {
	if err == nil {
		return ""
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		return i18n.T(lang, i18n.KeyError)
	}
	switch e.Kind {
	case apperr.KindCamera:
		return i18n.T(lang, i18n.KeyCameraError) + cause(e)
	case apperr.KindCameraSwitch:
		return i18n.T(lang, i18n.KeyCameraSwitchError) + cause(e)
	case apperr.KindFeedback:
		return i18n.T(lang, i18n.KeyFeedbackError)
	case apperr.KindValidation:
		if e.Op == "submit" || e == acquisition.ErrNoFile {
			return i18n.T(lang, i18n.KeySelectImage)
		}
		return e.Message
	default:
		return i18n.T(lang, i18n.KeyError)
	}
}

func cause(e *apperr.Error) string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}
