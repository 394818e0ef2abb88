package storage

import (
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/patrickmn/go-cache"
)

// SessionStore holds one client per browser session. Idle clients expire
// after the TTL and are closed when they leave the store.
type SessionStore struct {
	clients *cache.Cache
}

func New(ttl time.Duration) *SessionStore {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, v interface{}) {
		client, ok := v.(*app.Client)
		if !ok {
			return
		}
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close evicted client", "client_id", id, "err", err)
			return
		}
		slog.Debug("Client evicted", "client_id", id)
	})
	return &SessionStore{clients: c}
}

// Get returns the client and restarts its expiry.
func (s *SessionStore) Get(sessionID string) (*app.Client, bool) {
	v, exists := s.clients.Get(sessionID)
	if !exists {
		return nil, false
	}
	client := v.(*app.Client)
	s.clients.SetDefault(sessionID, client)
	return client, true
}

func (s *SessionStore) Set(sessionID string, client *app.Client) {
	s.clients.SetDefault(sessionID, client)
}

func (s *SessionStore) GetAll() map[string]*app.Client {
	items := s.clients.Items()
	result := make(map[string]*app.Client, len(items))
	for k, item := range items {
		result[k] = item.Object.(*app.Client)
	}
	return result
}

// Delete removes and closes the client.
func (s *SessionStore) Delete(sessionID string) {
	s.clients.Delete(sessionID)
}

func (s *SessionStore) Count() int {
	return s.clients.ItemCount()
}

// Close removes and closes every client.
func (s *SessionStore) Close() {
	for id := range s.clients.Items() {
		s.clients.Delete(id)
	}
}
