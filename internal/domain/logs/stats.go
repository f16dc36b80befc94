package logs

import (
	"time"

	"github.com/eravn/syncdeck/internal/domain/session"
)

// Stats summarizes sync activity over a time window for the dashboard.
type Stats struct {
	Sessions        int   `json:"sessions"`
	Files           int   `json:"files"`
	Size            int64 `json:"size"`
	DurationSeconds int   `json:"duration"`
}

// StatsSince computes activity stats for sessions started at or after the
// given instant. Unlike Reconcile's mean, duration here is a sum: the
// dashboard shows total time spent syncing in the window.
func StatsSince(sessions []session.Session, since time.Time) Stats {
	var st Stats
	for _, s := range sessions {
		if s.StartedAt.Before(since) {
			continue
		}
		st.Sessions++
		st.Files += s.FilesCount
		st.Size += s.TotalSizeSynced
		st.DurationSeconds += s.DurationSeconds
	}
	return st
}

// DashboardStats is the windowed activity summary shown on the status
// screen, mirroring what the operator sees first.
type DashboardStats struct {
	Today    Stats `json:"today"`
	Last7Day Stats `json:"last7Days"`
}

// ComputeDashboard derives today's and the trailing week's stats from one
// loaded session list.
func ComputeDashboard(sessions []session.Session, now time.Time) DashboardStats {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DashboardStats{
		Today:    StatsSince(sessions, startOfDay),
		Last7Day: StatsSince(sessions, now.Add(-7*24*time.Hour)),
	}
}
