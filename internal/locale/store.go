// Package locale holds the active language and the view-state derived from
// it. Changing the language re-renders whatever is on screen without any
// network activity.
package locale

import (
	"sync"

	"github.com/lehigh-university-libraries/cropscan/internal/apperr"
	"github.com/lehigh-university-libraries/cropscan/internal/i18n"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/present"
)

// View is the language-dependent view-state.
type View struct {
	Language string                `json:"language" yaml:"language"`
	Result   *present.ResultView   `json:"result,omitempty" yaml:"result,omitempty"`
	Insights *present.InsightsView `json:"insights,omitempty" yaml:"insights,omitempty"`
	Speech   *present.Utterance    `json:"speech,omitempty" yaml:"speech,omitempty"`
}

// Listener is called with the new view after every change.
type Listener func(View)

// Store owns the active language and the displayed data.
type Store struct {
	mu        sync.RWMutex
	lang      string
	result    *models.ResultSet
	insights  *models.Insights
	view      View
	listeners []Listener
}

// NewStore starts in lang, or the default language when lang is not supported.
func NewStore(lang string) *Store {
	matched, _ := i18n.Match(lang)
	s := &Store{lang: matched}
	s.view = s.render()
	return s
}

// Language implements workflow.LocaleSource.
func (s *Store) Language() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// SetLanguage switches languages and re-derives the view. Unsupported codes
// are rejected and leave the store unchanged.
func (s *Store) SetLanguage(code string) (string, error) {
	lang, ok := i18n.Match(code)
	if !ok {
		return s.Language(), apperr.Validation("set language", "unsupported language %q", code)
	}
	s.update(func() { s.lang = lang })
	return lang, nil
}

// Show displays a result set. Insights from an earlier result are dropped.
func (s *Store) Show(rs *models.ResultSet) {
	s.update(func() {
		s.result = rs.Clone()
		s.insights = nil
	})
}

// ShowInsights displays community insights beside the current result.
func (s *Store) ShowInsights(ins *models.Insights) {
	s.update(func() { s.insights = ins })
}

// Clear removes any displayed result and insights.
func (s *Store) Clear() {
	s.update(func() {
		s.result = nil
		s.insights = nil
	})
}

// View returns the current view-state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Result returns a copy of the displayed result set.
func (s *Store) Result() *models.ResultSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result.Clone()
}

// Label looks up an interface label in the active language.
func (s *Store) Label(key i18n.Key) string {
	return i18n.T(s.Language(), key)
}

// OnChange registers a listener for view changes.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) update(mutate func()) {
	s.mu.Lock()
	mutate()
	s.view = s.render()
	view := s.view
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(view)
	}
}

func (s *Store) render() View {
	v := View{
		Language: s.lang,
		Result:   present.Render(s.result, s.lang),
		Insights: present.RenderInsights(s.insights, s.lang),
	}
	if u, ok := present.Speech(s.result, s.lang); ok {
		v.Speech = &u
	}
	return v
}
