package bridge

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
)

// dataset is the simulator's backend-side state. All access goes through
// the Simulator's mutex. Sessions are kept newest first, matching the
// order the real backend returns.
type dataset struct {
	projects []project.Project
	sessions []session.Session
	fileLogs []session.FileLog
	settings settings.Settings
}

// newDataset builds the canned state, anchored to now so relative time
// filters (today, last 7 days) always have data on both sides of the
// cutoff.
func newDataset(now time.Time) *dataset {
	daysAgo := func(d int) time.Time { return now.Add(-time.Duration(d) * 24 * time.Hour) }
	hoursAgo := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour) }
	tp := func(t time.Time) *time.Time { return &t }

	d := &dataset{settings: settings.NewDefault()}
	d.settings.WebhookURL = "https://hooks.example.com/sync-status"
	d.settings.FirebaseProjectID = "syncdeck-demo"
	d.settings.EnableNotifications = true

	d.projects = []project.Project{
		{
			ID:               "proj-finance",
			Name:             "Finance Reports",
			Description:      "Monthly finance exports to the shared archive",
			SourceFolderID:   "src-fin-001",
			SourceFolderLink: "https://drive.example.com/folders/src-fin-001",
			DestFolderID:     "dst-fin-001",
			DestFolderLink:   "https://drive.example.com/folders/dst-fin-001",
			Status:           project.StatusActive,
			LastSyncAt:       tp(hoursAgo(2)),
			LastSyncStatus:   project.OutcomeSuccess,
			FilesCount:       412,
			TotalSize:        1_864_533_211,
			CreatedAt:        daysAgo(90),
			UpdatedAt:        hoursAgo(2),
		},
		{
			ID:               "proj-media",
			Name:             "Media Assets",
			Description:      "Raw footage mirror for the editing team",
			SourceFolderID:   "src-med-002",
			SourceFolderLink: "https://drive.example.com/folders/src-med-002",
			DestFolderID:     "dst-med-002",
			DestFolderLink:   "https://drive.example.com/folders/dst-med-002",
			Status:           project.StatusError,
			LastSyncAt:       tp(hoursAgo(5)),
			LastSyncStatus:   project.OutcomeError,
			FilesCount:       1287,
			TotalSize:        52_318_072_040,
			CreatedAt:        daysAgo(60),
			UpdatedAt:        hoursAgo(5),
		},
		{
			ID:               "proj-legal",
			Name:             "Legal Contracts",
			Description:      "Signed contracts, paused during the audit",
			SourceFolderID:   "src-leg-003",
			SourceFolderLink: "https://drive.example.com/folders/src-leg-003",
			DestFolderID:     "dst-leg-003",
			DestFolderLink:   "https://drive.example.com/folders/dst-leg-003",
			Status:           project.StatusPaused,
			SyncStartDate:    tp(daysAgo(365)),
			LastSyncAt:       tp(daysAgo(12)),
			LastSyncStatus:   project.OutcomeSuccess,
			FilesCount:       96,
			TotalSize:        201_450_900,
			CreatedAt:        daysAgo(200),
			UpdatedAt:        daysAgo(12),
		},
	}

	// Session history, newest first. Includes a retryable failure, an
	// already-settled retry pair, and an interrupted run, so every
	// eligibility branch is reachable offline.
	d.sessions = []session.Session{
		{
			ID: "sess-1001", ProjectID: "proj-finance", ProjectName: "Finance Reports",
			RunID: "run-" + hoursAgo(2).Format("20060102") + "-a1b2c3d4",
			StartedAt: hoursAgo(2), DurationSeconds: 184, Status: session.OutcomeSuccess,
			FilesCount: 37, TotalSizeSynced: 92_441_600,
		},
		{
			ID: "sess-1002", ProjectID: "proj-media", ProjectName: "Media Assets",
			RunID: "run-" + hoursAgo(5).Format("20060102") + "-e5f6a7b8",
			StartedAt: hoursAgo(5), DurationSeconds: 67, Status: session.OutcomeError,
			FilesCount: 12, FailedCount: 12, TotalSizeSynced: 0,
			ErrorMessage: "destination folder quota exceeded",
		},
		{
			ID: "sess-1003", ProjectID: "proj-finance", ProjectName: "Finance Reports",
			RunID: "run-" + hoursAgo(8).Format("20060102") + "-c9d0e1f2",
			StartedAt: hoursAgo(8), DurationSeconds: 291, Status: session.OutcomeSuccess,
			FilesCount: 52, TotalSizeSynced: 130_220_040,
			RetryOf: "sess-1005",
		},
		{
			ID: "sess-1004", ProjectID: "proj-media", ProjectName: "Media Assets",
			RunID: "run-" + daysAgo(1).Format("20060102") + "-0316a5c7",
			StartedAt: daysAgo(1), DurationSeconds: 305, Status: session.OutcomeInterrupted,
			FilesCount: 203, FailedCount: 41, TotalSizeSynced: 8_112_660_000,
			ErrorMessage: "execution cutoff reached",
		},
		{
			ID: "sess-1005", ProjectID: "proj-finance", ProjectName: "Finance Reports",
			RunID: "run-" + daysAgo(1).Format("20060102") + "-77cd21ab",
			StartedAt: daysAgo(1).Add(-3 * time.Hour), DurationSeconds: 44, Status: session.OutcomeError,
			FilesCount: 52, FailedCount: 52, TotalSizeSynced: 0,
			ErrorMessage: "source folder temporarily unavailable",
			Retried:      true, RetriedBy: "sess-1003",
		},
		{
			ID: "sess-1006", ProjectID: "proj-legal", ProjectName: "Legal Contracts",
			RunID: "run-" + daysAgo(12).Format("20060102") + "-4455ef90",
			StartedAt: daysAgo(12), DurationSeconds: 58, Status: session.OutcomeSuccess,
			FilesCount: 4, TotalSizeSynced: 9_830_400,
		},
		{
			ID: "sess-1007", ProjectID: "proj-media", ProjectName: "Media Assets",
			RunID: "run-" + daysAgo(14).Format("20060102") + "-8899bc12",
			StartedAt: daysAgo(14), DurationSeconds: 512, Status: session.OutcomeSuccess,
			FilesCount: 340, TotalSizeSynced: 14_902_336_000,
		},
	}

	d.fileLogs = []session.FileLog{
		{
			ID: "flog-2001", SessionID: "sess-1001", FileName: "q3-revenue.xlsx",
			SourceLink: "https://drive.example.com/files/q3-revenue",
			DestLink:   "https://drive.example.com/files/q3-revenue-copy",
			SourcePath: "/Finance Reports/2026/q3-revenue.xlsx",
			CreatedDate: daysAgo(30), ModifiedDate: hoursAgo(3),
			FileSize: 4_521_880, Status: "success",
		},
		{
			ID: "flog-2002", SessionID: "sess-1001", FileName: "q3-forecast.pdf",
			SourceLink: "https://drive.example.com/files/q3-forecast",
			DestLink:   "https://drive.example.com/files/q3-forecast-copy",
			SourcePath: "/Finance Reports/2026/q3-forecast.pdf",
			CreatedDate: daysAgo(28), ModifiedDate: hoursAgo(4),
			FileSize: 1_204_776, Status: "success",
		},
		{
			ID: "flog-2003", SessionID: "sess-1002", FileName: "scene-04-take-2.mov",
			SourceLink: "https://drive.example.com/files/scene-04-take-2",
			SourcePath: "/Media Assets/footage/scene-04-take-2.mov",
			CreatedDate: daysAgo(2), ModifiedDate: daysAgo(1),
			FileSize: 2_348_810_240, Status: "error",
		},
	}

	return d
}

// liveProjects returns non-deleted projects as a fresh slice.
func (d *dataset) liveProjects() []project.Project {
	out := make([]project.Project, 0, len(d.projects))
	for _, p := range d.projects {
		if !p.Deleted {
			out = append(out, p)
		}
	}
	return out
}

func (d *dataset) findProject(id string) *project.Project {
	for i := range d.projects {
		if d.projects[i].ID == id && !d.projects[i].Deleted {
			p := d.projects[i]
			return &p
		}
	}
	return nil
}

func (d *dataset) createProject(draft project.Draft, now time.Time) project.Project {
	p := project.Project{
		ID:               "proj-" + uuid.NewString()[:8],
		Name:             draft.Name,
		Description:      draft.Description,
		SourceFolderID:   draft.SourceFolderID,
		SourceFolderLink: draft.SourceFolderLink,
		DestFolderID:     draft.DestFolderID,
		DestFolderLink:   draft.DestFolderLink,
		Status:           project.StatusActive,
		SyncStartDate:    draft.SyncStartDate,
		LastSyncStatus:   project.OutcomePending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	d.projects = append(d.projects, p)
	return p
}

func (d *dataset) updateProject(patch project.Patch, now time.Time) (project.Project, error) {
	for i := range d.projects {
		if d.projects[i].ID != patch.ID || d.projects[i].Deleted {
			continue
		}
		updated := patch.Apply(d.projects[i])
		updated.UpdatedAt = now
		d.projects[i] = updated
		return updated, nil
	}
	return project.Project{}, notFound("project", patch.ID)
}

func (d *dataset) deleteProject(id string) (deleteAck, error) {
	for i := range d.projects {
		if d.projects[i].ID == id && !d.projects[i].Deleted {
			d.projects[i].Deleted = true
			return deleteAck{Success: true}, nil
		}
	}
	return deleteAck{}, notFound("project", id)
}

// filteredSessions applies the log filter server-side, the way the real
// backend does, and returns the matching sessions newest first.
func (d *dataset) filteredSessions(filter logs.Filter, now time.Time) []session.Session {
	view := logs.Reconcile(d.sessions, filter, now)
	out := make([]session.Session, 0, len(view.Entries))
	for _, e := range view.Entries {
		out = append(out, e.Session)
	}
	return out
}

func (d *dataset) sessionsByProject(projectID string) []session.Session {
	out := make([]session.Session, 0)
	for _, s := range d.sessions {
		if s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out
}

func (d *dataset) fileLogsFor(sessionID, projectID string) ([]session.FileLog, error) {
	found := false
	for i := range d.sessions {
		if d.sessions[i].ID == sessionID && d.sessions[i].ProjectID == projectID {
			found = true
			break
		}
	}
	if !found {
		return nil, notFound("session", sessionID)
	}

	out := make([]session.FileLog, 0)
	for _, fl := range d.fileLogs {
		if fl.SessionID == sessionID {
			out = append(out, fl)
		}
	}
	return out, nil
}

// retrySession enforces the same eligibility rules as the backend and
// rewrites the linkage fields on both sides of the new edge, so a reload
// observes a consistent chain.
func (d *dataset) retrySession(sessionID, projectID string, now time.Time) (session.Session, error) {
	var orig *session.Session
	for i := range d.sessions {
		if d.sessions[i].ID == sessionID && d.sessions[i].ProjectID == projectID {
			orig = &d.sessions[i]
			break
		}
	}
	if orig == nil {
		return session.Session{}, notFound("session", sessionID)
	}
	if orig.Retried {
		return session.Session{}, domainErrors.NewError(domainErrors.CodeEligibility,
			fmt.Sprintf("session %s has already been retried", sessionID), domainErrors.ErrAlreadyRetried)
	}
	if orig.Status != session.OutcomeError {
		return session.Session{}, domainErrors.NewError(domainErrors.CodeEligibility,
			"only failed sessions can be retried", domainErrors.ErrNotRetryable)
	}

	retry := session.Session{
		ID:              "sess-" + uuid.NewString()[:8],
		ProjectID:       orig.ProjectID,
		ProjectName:     orig.ProjectName,
		RunID:           newRunID(now),
		StartedAt:       now,
		DurationSeconds: 45 + orig.FilesCount/4,
		Status:          session.OutcomeSuccess,
		FilesCount:      orig.FilesCount,
		TotalSizeSynced: orig.TotalSizeSynced,
		RetryOf:         orig.ID,
	}
	orig.Retried = true
	orig.RetriedBy = retry.ID

	// Newest first.
	d.sessions = append([]session.Session{retry}, d.sessions...)

	for i := range d.projects {
		if d.projects[i].ID == retry.ProjectID {
			t := now
			d.projects[i].LastSyncAt = &t
			d.projects[i].LastSyncStatus = project.OutcomeSuccess
			if d.projects[i].Status == project.StatusError {
				d.projects[i].Status = project.StatusActive
			}
			d.projects[i].UpdatedAt = now
		}
	}

	return retry, nil
}

func (d *dataset) heartbeats(now time.Time) []project.Heartbeat {
	out := make([]project.Heartbeat, 0, len(d.projects))
	for _, p := range d.projects {
		if p.Deleted {
			continue
		}
		status := string(p.LastSyncStatus)
		if status == "" {
			status = string(project.OutcomePending)
		}
		out = append(out, project.Heartbeat{
			ProjectID:          p.ID,
			LastCheckTimestamp: now,
			LastStatus:         status,
		})
	}
	return out
}
