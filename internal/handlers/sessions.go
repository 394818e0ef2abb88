package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/sessions"
	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
)

const (
	cookieName  = "cropscan"
	clientIDKey = "client_id"
)

// NewCookieStore signs session cookies with key. The cookie lives as long as
// an idle client and is sent over plain HTTP, since the API serves localhost.
func NewCookieStore(key []byte, ttl time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// clientFor returns the browser's client, creating one and setting the
// cookie when the session is new or has expired.
func (h *Handler) clientFor(w http.ResponseWriter, r *http.Request) (*app.Client, bool) {
	session, err := h.cookies.Get(r, cookieName)
	if err != nil {
		// an undecodable cookie still yields a fresh session
		slog.Debug("Discarding invalid session cookie", "err", err)
	}

	if id, ok := session.Values[clientIDKey].(string); ok {
		if client, exists := h.sessionStore.Get(id); exists {
			return client, true
		}
	}

	client := h.newClient()
	h.sessionStore.Set(client.ID, client)
	session.Values[clientIDKey] = client.ID
	if err := session.Save(r, w); err != nil {
		h.sessionStore.Delete(client.ID)
		h.writeError(w, "Failed to save session: "+err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	slog.Info("Client created", "client_id", client.ID)
	return client, true
}

type sessionSummary struct {
	ClientID string         `json:"client_id"`
	State    workflow.State `json:"state"`
	Language string         `json:"language"`
}

// HandleSessions lists the clients currently held by the server.
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if !h.requireMethod(w, r, http.MethodGet) {
		return
	}
	clients := h.sessionStore.GetAll()
	sessionList := make([]sessionSummary, 0, len(clients))
	for id, client := range clients {
		snap := client.View()
		sessionList = append(sessionList, sessionSummary{
			ClientID: id,
			State:    snap.Status.State,
			Language: snap.View.Language,
		})
	}
	sort.Slice(sessionList, func(i, j int) bool { return sessionList[i].ClientID < sessionList[j].ClientID })
	h.writeJSON(w, sessionList)
}
