// Package monitor maintains a periodically refreshed snapshot of the fleet
// for the live dashboard. Readers get the last completed poll; a slow or
// failed poll never blocks them.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fptsbe/fleetengine-backend/bike"
)

// DefaultInterval matches the dashboard's refresh cadence.
const DefaultInterval = 5 * time.Second

// Source provides the fleet state a poll reads.
type Source interface {
	GetBikes(ctx context.Context) ([]bike.Bike, error)
}

// Snapshot is one completed poll of the fleet.
type Snapshot struct {
	TakenAt       time.Time   `json:"takenAt"`
	Bikes         []bike.Bike `json:"bikes"`
	Active        int         `json:"active"`
	InUse         int         `json:"inUse"`
	InMaintenance int         `json:"inMaintenance"`
}

type Monitor struct {
	source   Source
	logger   *slog.Logger
	interval time.Duration

	mu   sync.RWMutex
	snap Snapshot
}

func New(source Source, logger *slog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		source:   source,
		logger:   logger,
		interval: interval,
	}
}

// Run polls until the context is cancelled. It takes one snapshot immediately
// so early readers are not served an empty fleet.
func (m *Monitor) Run(ctx context.Context) {
	m.poll(ctx)

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.poll(ctx)
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	bikes, err := m.source.GetBikes(ctx)
	if err != nil {
		// Keep serving the previous snapshot.
		m.logger.ErrorContext(ctx, "fleet poll failed", "error", err)
		return
	}

	snap := Snapshot{TakenAt: time.Now(), Bikes: bikes}
	for _, b := range bikes {
		switch b.Status {
		case bike.StatusActive:
			snap.Active++
		case bike.StatusInUse:
			snap.InUse++
		case bike.StatusMaintenance:
			snap.InMaintenance++
		}
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
}

// Snapshot returns the last completed poll. The zero TakenAt means no poll
// has succeeded yet.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Age reports how old the current snapshot is.
func (m *Monitor) Age(now time.Time) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap.TakenAt.IsZero() {
		return 0
	}
	return now.Sub(m.snap.TakenAt)
}
