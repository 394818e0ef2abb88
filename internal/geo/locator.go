// Package geo attaches a best-effort location to submissions. The lookup
// runs once in the background and never blocks or fails the caller.
package geo

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

// ErrNoPosition is returned by a PositionSource that has nothing to report.
var ErrNoPosition = errors.New("position unavailable")

// PositionSource reports the device position.
type PositionSource interface {
	Position(ctx context.Context) (lat, lon float64, err error)
}

// Reverser turns coordinates into a place name.
type Reverser interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// StaticPosition is a fixed, configured position.
type StaticPosition struct {
	Latitude  float64
	Longitude float64
}

func (p StaticPosition) Position(ctx context.Context) (float64, float64, error) {
	return p.Latitude, p.Longitude, nil
}

// ManualPosition waits for coordinates reported later, e.g. by a browser.
type ManualPosition struct {
	once sync.Once
	ch   chan [2]float64
}

func NewManualPosition() *ManualPosition {
	return &ManualPosition{ch: make(chan [2]float64, 1)}
}

// Set reports the position. Only the first call has any effect.
func (p *ManualPosition) Set(lat, lon float64) {
	p.once.Do(func() {
		p.ch <- [2]float64{lat, lon}
	})
}

func (p *ManualPosition) Position(ctx context.Context) (float64, float64, error) {
	select {
	case v := <-p.ch:
		return v[0], v[1], nil
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}

// Locator resolves the geo context at most once per lifetime.
type Locator struct {
	source   PositionSource
	reverser Reverser
	logger   *slog.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.RWMutex
	current *models.GeoContext
}

// NewLocator returns a locator. reverser may be nil, in which case only
// coordinates are reported.
func NewLocator(source PositionSource, reverser Reverser, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{source: source, reverser: reverser, logger: logger, done: make(chan struct{})}
}

// Start launches the lookup. Later calls do nothing.
func (l *Locator) Start(ctx context.Context) {
	l.once.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		l.mu.Lock()
		l.cancel = cancel
		l.mu.Unlock()
		go l.run(ctx)
	})
}

func (l *Locator) run(ctx context.Context) {
	defer close(l.done)

	lat, lon, err := l.source.Position(ctx)
	if err != nil {
		l.logger.Debug("Geolocation unavailable", "err", err)
		return
	}
	l.set(&models.GeoContext{Latitude: lat, Longitude: lon})

	if l.reverser == nil {
		return
	}
	name, err := l.reverser.Reverse(ctx, lat, lon)
	if err != nil {
		l.logger.Debug("Reverse geocoding failed", "lat", lat, "lon", lon, "err", err)
		name = UnknownLocation
	}
	l.set(&models.GeoContext{Latitude: lat, Longitude: lon, Name: name})
	l.logger.Debug("Location resolved", "name", name)
}

func (l *Locator) set(g *models.GeoContext) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current = g
}

// Current returns the known location or nil. It never blocks on the lookup.
func (l *Locator) Current() *models.GeoContext {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return nil
	}
	g := *l.current
	return &g
}

// Stop cancels an unfinished lookup and waits for it to exit.
func (l *Locator) Stop() {
	if l == nil {
		return
	}
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel == nil {
		return
	}
	cancel()
	<-l.done
}

// Done is closed once the lookup has finished.
func (l *Locator) Done() <-chan struct{} {
	return l.done
}
