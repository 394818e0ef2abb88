package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// HandleView returns the client's current snapshot.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, client.View())
}

// HandleSubmit sends the active image for prediction and blocks until the
// result is in.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(client *app.Client) error {
		_, err := client.Submit(r.Context())
		return err
	})
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(client *app.Client) error {
		return client.Reset()
	})
}

// HandleFeedback records a correct or incorrect verdict.
func (h *Handler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Judgment models.Judgment `json:"judgment"`
	}
	h.mutateJSON(w, r, &request, func(client *app.Client) error {
		return client.OpenFeedback(r.Context(), request.Judgment)
	})
}

// HandleResolveFeedback submits the correction after an incorrect verdict.
func (h *Handler) HandleResolveFeedback(w http.ResponseWriter, r *http.Request) {
	var request struct {
		CorrectedDisease string `json:"corrected_disease"`
		Contribute       bool   `json:"contribute_to_dataset"`
	}
	h.mutateJSON(w, r, &request, func(client *app.Client) error {
		return client.ResolveFeedback(r.Context(), models.FeedbackRecord{
			Judgment:        models.Incorrect,
			CorrectedLabel:  request.CorrectedDisease,
			ContributeImage: request.Contribute,
		})
	})
}

func (h *Handler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Language string `json:"language"`
	}
	h.mutateJSON(w, r, &request, func(client *app.Client) error {
		_, err := client.SetLanguage(request.Language)
		return err
	})
}

// HandleLocation accepts coordinates reported by the browser.
func (h *Handler) HandleLocation(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	h.mutateJSON(w, r, &request, func(client *app.Client) error {
		return client.SetLocation(request.Latitude, request.Longitude)
	})
}

// mutate runs op against the browser's client and replies with the
// resulting snapshot.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(*app.Client) error) {
	if !h.requireMethod(w, r, http.MethodPost) {
		return
	}
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}
	if err := op(client); err != nil {
		h.writeAppError(w, client, err)
		return
	}
	h.writeJSON(w, client.View())
}

func (h *Handler) mutateJSON(w http.ResponseWriter, r *http.Request, request any, op func(*app.Client) error) {
	if !h.requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.mutate(w, r, op)
}

// Register adds every API route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/sessions", h.HandleSessions)
	mux.HandleFunc("/api/acquire", h.HandleAcquire)
	mux.HandleFunc("/api/submit", h.HandleSubmit)
	mux.HandleFunc("/api/reset", h.HandleReset)
	mux.HandleFunc("/api/feedback", h.HandleFeedback)
	mux.HandleFunc("/api/feedback/resolve", h.HandleResolveFeedback)
	mux.HandleFunc("/api/language", h.HandleLanguage)
	mux.HandleFunc("/api/location", h.HandleLocation)
	mux.HandleFunc("/api/view", h.HandleView)
}
