package logs

import (
	"errors"
	"testing"
	"time"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/session"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// historyFixture builds sessions spanning ten days, newest first.
func historyFixture() []session.Session {
	daysAgo := func(d int) time.Time { return testNow.Add(-time.Duration(d) * 24 * time.Hour) }

	return []session.Session{
		{ID: "s1", ProjectID: "p1", ProjectName: "Finance Reports", RunID: "run-001",
			StartedAt: daysAgo(0), DurationSeconds: 120, Status: session.OutcomeSuccess,
			FilesCount: 10, TotalSizeSynced: 1000},
		{ID: "s2", ProjectID: "p2", ProjectName: "Media Assets", RunID: "run-002",
			StartedAt: daysAgo(1), DurationSeconds: 60, Status: session.OutcomeError,
			FilesCount: 5, FailedCount: 5},
		{ID: "s3", ProjectID: "p1", ProjectName: "Finance Reports", RunID: "run-003",
			StartedAt: daysAgo(2), DurationSeconds: 90, Status: session.OutcomeSuccess,
			FilesCount: 8, TotalSizeSynced: 800, RetryOf: "s5"},
		{ID: "s4", ProjectID: "p2", ProjectName: "Media Assets", RunID: "run-004",
			StartedAt: daysAgo(4), DurationSeconds: 300, Status: session.OutcomeInterrupted,
			FilesCount: 40},
		{ID: "s5", ProjectID: "p1", ProjectName: "Finance Reports", RunID: "run-005",
			StartedAt: daysAgo(5), DurationSeconds: 30, Status: session.OutcomeError,
			FilesCount: 8, FailedCount: 8, Retried: true, RetriedBy: "s3"},
		{ID: "s6", ProjectID: "p3", ProjectName: "Legal Contracts", RunID: "run-006",
			StartedAt: daysAgo(9), DurationSeconds: 45, Status: session.OutcomeSuccess,
			FilesCount: 3, TotalSizeSynced: 300},
	}
}

func TestReconcile_WindowFilter(t *testing.T) {
	sessions := historyFixture()

	tests := []struct {
		name    string
		days    int
		wantIDs []string
	}{
		{name: "three day window", days: 3, wantIDs: []string{"s1", "s2", "s3"}},
		{name: "seven day window", days: 7, wantIDs: []string{"s1", "s2", "s3", "s4", "s5"}},
		{name: "all time", days: AllTime, wantIDs: []string{"s1", "s2", "s3", "s4", "s5", "s6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := NewFilter()
			filter.WindowDays = tt.days

			view := Reconcile(sessions, filter, testNow)

			if len(view.Entries) != len(tt.wantIDs) {
				t.Fatalf("expected %d entries, got %d", len(tt.wantIDs), len(view.Entries))
			}
			for i, id := range tt.wantIDs {
				if view.Entries[i].ID != id {
					t.Errorf("entry %d: expected %s, got %s", i, id, view.Entries[i].ID)
				}
			}
		})
	}
}

func TestReconcile_StatusAndSearchFilters(t *testing.T) {
	sessions := historyFixture()

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []string
	}{
		{
			name:    "status error",
			filter:  Filter{WindowDays: AllTime, Status: "error"},
			wantIDs: []string{"s2", "s5"},
		},
		{
			name:    "status interrupted",
			filter:  Filter{WindowDays: AllTime, Status: "interrupted"},
			wantIDs: []string{"s4"},
		},
		{
			name:    "search by project name case-insensitive",
			filter:  Filter{WindowDays: AllTime, Status: StatusAll, Search: "finance"},
			wantIDs: []string{"s1", "s3", "s5"},
		},
		{
			name:    "search by run id",
			filter:  Filter{WindowDays: AllTime, Status: StatusAll, Search: "run-004"},
			wantIDs: []string{"s4"},
		},
		{
			name:    "filters compose",
			filter:  Filter{WindowDays: 3, Status: "success", Search: "finance"},
			wantIDs: []string{"s1", "s3"},
		},
		{
			name:    "no match",
			filter:  Filter{WindowDays: AllTime, Status: "success", Search: "media assets"},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Reconcile(sessions, tt.filter, testNow)

			if len(view.Entries) != len(tt.wantIDs) {
				t.Fatalf("expected %d entries, got %d", len(tt.wantIDs), len(view.Entries))
			}
			for i, id := range tt.wantIDs {
				if view.Entries[i].ID != id {
					t.Errorf("entry %d: expected %s, got %s", i, id, view.Entries[i].ID)
				}
			}
		})
	}
}

func TestReconcile_RetryAnnotations(t *testing.T) {
	view := Reconcile(historyFixture(), NewFilter(), testNow)

	byID := make(map[string]Entry)
	for _, e := range view.Entries {
		byID[e.ID] = e
	}

	if !byID["s3"].IsRetry {
		t.Error("s3 should be annotated as a retry")
	}
	if byID["s3"].WasRetried {
		t.Error("s3 should not be annotated as retried")
	}
	if !byID["s5"].WasRetried {
		t.Error("s5 should be annotated as retried")
	}
	if byID["s5"].IsRetry {
		t.Error("s5 should not be annotated as a retry")
	}
	if byID["s1"].IsRetry || byID["s1"].WasRetried {
		t.Error("s1 should carry no retry annotations")
	}

	// Annotations never change the underlying outcome.
	if byID["s5"].Status != session.OutcomeError {
		t.Errorf("s5 outcome changed: %s", byID["s5"].Status)
	}
}

func TestReconcile_Aggregates(t *testing.T) {
	filter := Filter{WindowDays: 3, Status: StatusAll}
	view := Reconcile(historyFixture(), filter, testNow)

	agg := view.Aggregates
	if agg.Sessions != 3 {
		t.Fatalf("expected 3 sessions, got %d", agg.Sessions)
	}
	if agg.FilesProcessed != 23 {
		t.Errorf("expected 23 files, got %d", agg.FilesProcessed)
	}
	// (120 + 60 + 90) / 3 = 90
	if agg.MeanDurationSeconds != 90 {
		t.Errorf("expected mean 90, got %d", agg.MeanDurationSeconds)
	}
	if agg.TotalSizeSynced != 1800 {
		t.Errorf("expected 1800 bytes, got %d", agg.TotalSizeSynced)
	}
}

func TestReconcile_MeanIsRounded(t *testing.T) {
	sessions := []session.Session{
		{ID: "a", StartedAt: testNow, DurationSeconds: 10, Status: session.OutcomeSuccess},
		{ID: "b", StartedAt: testNow, DurationSeconds: 11, Status: session.OutcomeSuccess},
		{ID: "c", StartedAt: testNow, DurationSeconds: 11, Status: session.OutcomeSuccess},
	}

	view := Reconcile(sessions, NewFilter(), testNow)
	// 32/3 = 10.67 rounds to 11
	if view.Aggregates.MeanDurationSeconds != 11 {
		t.Errorf("expected rounded mean 11, got %d", view.Aggregates.MeanDurationSeconds)
	}
}

func TestReconcile_EmptySet(t *testing.T) {
	view := Reconcile(nil, NewFilter(), testNow)

	if len(view.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(view.Entries))
	}
	agg := view.Aggregates
	if agg.Sessions != 0 || agg.FilesProcessed != 0 || agg.MeanDurationSeconds != 0 || agg.TotalSizeSynced != 0 {
		t.Errorf("expected zero aggregates, got %+v", agg)
	}
}

func TestCheckRetry(t *testing.T) {
	sessions := historyFixture()

	tests := []struct {
		name      string
		sessionID string
		wantErr   error
	}{
		{name: "failed and not retried", sessionID: "s2", wantErr: nil},
		{name: "already retried", sessionID: "s5", wantErr: domainErrors.ErrAlreadyRetried},
		{name: "successful session", sessionID: "s1", wantErr: domainErrors.ErrNotRetryable},
		{name: "interrupted session", sessionID: "s4", wantErr: domainErrors.ErrNotRetryable},
		{name: "unknown session", sessionID: "nope", wantErr: domainErrors.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRetry(sessions, tt.sessionID)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected retry to be allowed, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
