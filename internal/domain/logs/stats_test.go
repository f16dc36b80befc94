package logs

import (
	"testing"
	"time"

	"github.com/eravn/syncdeck/internal/domain/session"
)

func TestStatsSince(t *testing.T) {
	sessions := historyFixture()

	st := StatsSince(sessions, testNow.Add(-3*24*time.Hour))
	if st.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", st.Sessions)
	}
	if st.Files != 23 {
		t.Errorf("expected 23 files, got %d", st.Files)
	}
	// Dashboard duration is a sum, not a mean.
	if st.DurationSeconds != 270 {
		t.Errorf("expected 270s total, got %d", st.DurationSeconds)
	}
	if st.Size != 1800 {
		t.Errorf("expected 1800 bytes, got %d", st.Size)
	}
}

func TestStatsSince_Empty(t *testing.T) {
	st := StatsSince(nil, testNow)
	if st != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", st)
	}
}

func TestComputeDashboard(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	sessions := []session.Session{
		{ID: "today", StartedAt: now.Add(-2 * time.Hour), FilesCount: 5, DurationSeconds: 60},
		{ID: "yesterday", StartedAt: now.Add(-26 * time.Hour), FilesCount: 7, DurationSeconds: 120},
		{ID: "last-month", StartedAt: now.Add(-30 * 24 * time.Hour), FilesCount: 100},
	}

	stats := ComputeDashboard(sessions, now)

	if stats.Today.Sessions != 1 || stats.Today.Files != 5 {
		t.Errorf("unexpected today stats: %+v", stats.Today)
	}
	if stats.Last7Day.Sessions != 2 || stats.Last7Day.Files != 12 {
		t.Errorf("unexpected last-7-day stats: %+v", stats.Last7Day)
	}
	if stats.Last7Day.DurationSeconds != 180 {
		t.Errorf("expected 180s in the week, got %d", stats.Last7Day.DurationSeconds)
	}
}
