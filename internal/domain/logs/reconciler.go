// Package logs turns raw sync-session history into the operator's log
// view: filtering, retry-chain reconciliation, and aggregate statistics.
//
// The backend is the source of truth for session history. This package
// never assumes the loaded list is exhaustive or fresh; it derives what it
// can and flags what does not line up.
package logs

import (
	"math"
	"strings"
	"time"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/session"
)

// StatusAll matches every session outcome in a Filter.
const StatusAll = "all"

// AllTime disables the time-window filter.
const AllTime = -1

// Filter selects which sessions appear in the log view.
type Filter struct {
	WindowDays int    `json:"days"`   // Keep sessions started within this many days; AllTime for no limit
	Status     string `json:"status"` // One of all, success, error, interrupted
	Search     string `json:"search"` // Case-insensitive substring over project name or run id
}

// NewFilter returns a filter that passes everything.
func NewFilter() Filter {
	return Filter{WindowDays: AllTime, Status: StatusAll}
}

// Entry is one row of the operator's log view: the raw session plus
// presentational retry annotations. The annotations never change the
// underlying outcome.
type Entry struct {
	session.Session
	IsRetry    bool `json:"isRetry"`    // This row was created as a retry of another session
	WasRetried bool `json:"wasRetried"` // Another session has already retried this row
}

// Aggregates summarizes a filtered session set.
type Aggregates struct {
	Sessions            int   `json:"sessions"`
	FilesProcessed      int   `json:"filesProcessed"`
	MeanDurationSeconds int   `json:"meanDurationSeconds"` // Rounded to nearest second; 0 for an empty set
	TotalSizeSynced     int64 `json:"totalSizeSynced"`
}

// View is the reconciled log view handed to the presentation layer.
type View struct {
	Entries    []Entry    `json:"entries"`
	Aggregates Aggregates `json:"aggregates"`
}

// Reconcile filters sessions by window, status, and search text, derives
// per-row display annotations, and computes aggregates over the filtered
// set. Input order is preserved; sessions are never re-sorted here.
func Reconcile(sessions []session.Session, filter Filter, now time.Time) View {
	entries := make([]Entry, 0, len(sessions))
	for _, s := range sessions {
		if !matchesWindow(s, filter.WindowDays, now) {
			continue
		}
		if !matchesStatus(s, filter.Status) {
			continue
		}
		if !matchesSearch(s, filter.Search) {
			continue
		}
		entries = append(entries, Entry{
			Session:    s,
			IsRetry:    s.IsRetry(),
			WasRetried: s.Retried,
		})
	}

	return View{
		Entries:    entries,
		Aggregates: aggregate(entries),
	}
}

// matchesWindow keeps sessions started within windowDays of now.
func matchesWindow(s session.Session, windowDays int, now time.Time) bool {
	if windowDays == AllTime {
		return true
	}
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)
	return !s.StartedAt.Before(cutoff)
}

func matchesStatus(s session.Session, status string) bool {
	if status == "" || status == StatusAll {
		return true
	}
	return string(s.Status) == status
}

func matchesSearch(s session.Session, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.ProjectName), needle) ||
		strings.Contains(strings.ToLower(s.RunID), needle)
}

// aggregate computes summary statistics over the filtered entries.
// An empty set yields zero values, never NaN.
func aggregate(entries []Entry) Aggregates {
	agg := Aggregates{Sessions: len(entries)}
	if len(entries) == 0 {
		return agg
	}

	var durationSum int
	for _, e := range entries {
		agg.FilesProcessed += e.FilesCount
		agg.TotalSizeSynced += e.TotalSizeSynced
		durationSum += e.DurationSeconds
	}
	agg.MeanDurationSeconds = int(math.Round(float64(durationSum) / float64(len(entries))))
	return agg
}

// CheckRetry enforces the retry-eligibility invariant before any bridge
// call: only sessions with outcome error that have not already been
// retried may be retried. Rejections here never cost a network round trip.
func CheckRetry(sessions []session.Session, sessionID string) error {
	for i := range sessions {
		s := &sessions[i]
		if s.ID != sessionID {
			continue
		}
		if s.Retried {
			return domainErrors.NewError(domainErrors.CodeEligibility,
				"session "+sessionID+" has already been retried", domainErrors.ErrAlreadyRetried)
		}
		if s.Status != session.OutcomeError {
			return domainErrors.NewError(domainErrors.CodeEligibility,
				"only failed sessions can be retried", domainErrors.ErrNotRetryable)
		}
		return nil
	}
	return domainErrors.NewError(domainErrors.CodeNotFound,
		"session "+sessionID+" not in the loaded set", domainErrors.ErrSessionNotFound)
}
