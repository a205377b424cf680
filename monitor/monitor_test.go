package monitor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/fptsbe/fleetengine-backend/bike"
)

type fakeSource struct {
	bikes []bike.Bike
	err   error
}

func (f *fakeSource) GetBikes(ctx context.Context) ([]bike.Bike, error) {
	return f.bikes, f.err
}

func TestPollCountsStatuses(t *testing.T) {
	src := &fakeSource{bikes: []bike.Bike{
		{Label: "SBE-001", Status: bike.StatusActive},
		{Label: "SBE-002", Status: bike.StatusActive},
		{Label: "SBE-003", Status: bike.StatusInUse},
		{Label: "SBE-004", Status: bike.StatusMaintenance},
	}}

	m := New(src, slog.Default(), 0)
	m.poll(context.Background())

	snap := m.Snapshot()
	if snap.Active != 2 || snap.InUse != 1 || snap.InMaintenance != 1 {
		t.Errorf("unexpected counts: %s", spew.Sdump(snap))
	}
	if len(snap.Bikes) != 4 {
		t.Errorf("snapshot has %d bikes, want 4", len(snap.Bikes))
	}
	if snap.TakenAt.IsZero() {
		t.Error("snapshot should carry its poll time")
	}
}

func TestFailedPollKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{bikes: []bike.Bike{{Label: "SBE-001", Status: bike.StatusActive}}}

	m := New(src, slog.Default(), 0)
	m.poll(context.Background())
	first := m.Snapshot()

	src.err = errors.New("connection refused")
	src.bikes = nil
	m.poll(context.Background())

	second := m.Snapshot()
	if !second.TakenAt.Equal(first.TakenAt) {
		t.Error("failed poll should not replace the snapshot")
	}
	if second.Active != 1 {
		t.Errorf("stale snapshot lost its contents: %s", spew.Sdump(second))
	}
}

func TestAge(t *testing.T) {
	m := New(&fakeSource{}, slog.Default(), 0)
	if age := m.Age(time.Now()); age != 0 {
		t.Errorf("age before first poll = %v, want 0", age)
	}

	m.poll(context.Background())
	now := m.Snapshot().TakenAt.Add(7 * time.Second)
	if age := m.Age(now); age != 7*time.Second {
		t.Errorf("age = %v, want 7s", age)
	}
}
