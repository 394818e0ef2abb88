package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

type acquireResponse struct {
	SessionID   string        `json:"session_id"`
	Filename    string        `json:"filename"`
	ContentType string        `json:"content_type"`
	Bytes       int           `json:"bytes"`
	Source      models.Source `json:"source"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
}

// HandleAcquire makes an uploaded image the client's active image. It
// accepts a multipart "file" or a JSON body naming an image_url.
func (h *Handler) HandleAcquire(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodPost) {
		return
	}
	client, ok := h.clientFor(w, r)
	if !ok {
		return
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.handleURLAcquire(w, r, client)
		return
	}
	h.handleFileAcquire(w, r, client)
}

func (h *Handler) handleURLAcquire(w http.ResponseWriter, r *http.Request, client *app.Client) {
	var request struct {
		ImageURL        string `json:"image_url"`
		EnhanceContrast bool   `json:"enhance_contrast"`
		AutoCrop        bool   `json:"auto_crop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	opts := models.ProcessingOptions{EnhanceContrast: request.EnhanceContrast, AutoCrop: request.AutoCrop}
	session, err := acquisition.FromURL(r.Context(), h.fetchClient, request.ImageURL, opts)
	if err != nil {
		h.writeAppError(w, client, err)
		return
	}
	h.acquire(w, client, session)
}

func (h *Handler) handleFileAcquire(w http.ResponseWriter, r *http.Request, client *app.Client) {
	r.Body = http.MaxBytesReader(w, r.Body, acquisition.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts := models.ProcessingOptions{
		EnhanceContrast: formBool(r, "enhance_contrast"),
		AutoCrop:        formBool(r, "auto_crop"),
	}
	session, err := acquisition.ReadUpload(file, header.Filename, header.Header.Get("Content-Type"), opts)
	if err != nil {
		h.writeAppError(w, client, err)
		return
	}
	h.acquire(w, client, session)
}

func (h *Handler) acquire(w http.ResponseWriter, client *app.Client, session *acquisition.Session) {
	// describe before handing over; the workflow may release the blob later
	resp := describe(session)
	if err := client.Acquire(session); err != nil {
		h.writeAppError(w, client, err)
		return
	}
	h.writeJSON(w, resp)
}

func describe(s *acquisition.Session) acquireResponse {
	resp := acquireResponse{
		SessionID:   s.ID,
		Filename:    s.Filename,
		ContentType: s.ContentType,
		Bytes:       s.Size(),
		Source:      s.Source,
	}
	if blob, err := s.Blob(); err == nil {
		if info, err := acquisition.Inspect(blob); err == nil {
			resp.Width = info.Width
			resp.Height = info.Height
		}
	}
	return resp
}

func formBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.FormValue(key))
	return b
}
