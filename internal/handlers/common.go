package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/present"
	"github.com/lehigh-university-libraries/cropscan/internal/storage"
)

type Handler struct {
	sessionStore *storage.SessionStore
	cookies      sessions.Store
	newClient    func() *app.Client
	fetchClient  *http.Client
}

// New returns a handler that creates a client with newClient the first time
// a browser session is seen.
func New(store *storage.SessionStore, cookies sessions.Store, newClient func() *app.Client) *Handler {
	return &Handler{
		sessionStore: store,
		cookies:      cookies,
		newClient:    newClient,
		fetchClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Error   string      `json:"error"`
	Kind    apperr.Kind `json:"kind,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message}); err != nil {
		slog.Error("Unable to encode error response", "err", err)
	}
}

// writeAppError reports a workflow error with its kind and a message in the
// client's language.
func (h *Handler) writeAppError(w http.ResponseWriter, client *app.Client, err error) {
	code := statusFor(err)
	lang := i18n.Default
	if client != nil {
		lang = client.View().View.Language
	}
	if code >= http.StatusInternalServerError {
		slog.Error("Request failed", "err", err)
	} else {
		slog.Debug("Request rejected", "err", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := errorResponse{
		Error:   err.Error(),
		Kind:    apperr.KindOf(err),
		Message: present.ErrorMessage(err, lang),
	}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.Error("Unable to encode error response", "err", encErr)
	}
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindState, apperr.KindInFlight, apperr.KindStale:
		return http.StatusConflict
	case apperr.KindPrediction, apperr.KindFeedback:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
