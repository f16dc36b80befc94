// Package bridge implements the request/response bridge to the sync
// backend. One bridge, many operations: every call resolves exactly once,
// either with the backend's typed result or with an error carrying a
// human-readable message.
//
// Two implementations exist: Remote speaks to the real backend over HTTP,
// and Simulator serves a deterministic in-memory dataset for offline
// development and tests. Neither retries, times out, nor mutates client
// state; that policy belongs to callers.
package bridge

import (
	"context"

	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
)

// Operation names a backend call. The names are the wire-level contract
// with the backend dispatcher.
type Operation string

// Backend operations.
const (
	OpGetProjects          Operation = "getProjects"
	OpGetProject           Operation = "getProject"
	OpCreateProject        Operation = "createProject"
	OpUpdateProject        Operation = "updateProject"
	OpDeleteProject        Operation = "deleteProject"
	OpRunSyncAll           Operation = "runSyncAll"
	OpRunSyncProject       Operation = "runSyncProject"
	OpGetSettings          Operation = "getSettings"
	OpUpdateSettings       Operation = "updateSettings"
	OpGetSyncSessions      Operation = "getSyncSessions"
	OpGetSessionsByProject Operation = "getSessionsByProject"
	OpGetFileLogs          Operation = "getFileLogs"
	OpRetrySync            Operation = "retrySync"
	OpGetProjectHeartbeats Operation = "getProjectHeartbeats"
)

// Bridge is the typed operation table for the backend. Each method issues
// one call and settles exactly once. There is no cancellation beyond the
// context: an abandoned call still runs to completion on the backend.
type Bridge interface {
	GetProjects(ctx context.Context) ([]project.Project, error)
	GetProject(ctx context.Context, projectID string) (*project.Project, error)
	CreateProject(ctx context.Context, draft project.Draft) (project.Project, error)
	UpdateProject(ctx context.Context, patch project.Patch) (project.Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	RunSyncAll(ctx context.Context) (session.SyncAck, error)
	RunSyncProject(ctx context.Context, projectID string) (session.SyncAck, error)

	GetSettings(ctx context.Context) (settings.Settings, error)
	UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Settings, error)

	GetSyncSessions(ctx context.Context, filter logs.Filter) ([]session.Session, error)
	GetSessionsByProject(ctx context.Context, projectID string) ([]session.Session, error)
	GetFileLogs(ctx context.Context, sessionID, projectID string) ([]session.FileLog, error)
	RetrySync(ctx context.Context, sessionID, projectID string) (session.Session, error)

	GetProjectHeartbeats(ctx context.Context) ([]project.Heartbeat, error)
}

// deleteAck is the backend response to deleteProject.
type deleteAck struct {
	Success bool `json:"success"`
}
