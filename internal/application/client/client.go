// Package client implements the application-level operations behind every
// screen and command: loading shared state, mutating it through the
// bridge, and triggering sync runs. It owns the loading and in-flight
// bookkeeping so presentation code only ever reads snapshots.
//
// Two rules hold everywhere: the loading flag is cleared no matter how a
// load settles, and client state is never mutated before the backend
// confirms. A failed mutation leaves the registry exactly as it was,
// apart from the recorded error.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eravn/syncdeck/internal/adapters/bridge"
	"github.com/eravn/syncdeck/internal/application/registry"
	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
	"github.com/eravn/syncdeck/internal/infrastructure/logging"
)

// SyncAllTarget is the in-flight marker used for whole-service sync runs.
const SyncAllTarget = "all"

// Service coordinates the bridge and the registry store.
type Service struct {
	bridge bridge.Bridge
	store  *registry.Store
	logger *logging.Logger
	clock  func() time.Time

	mu       sync.Mutex
	inFlight map[string]bool // sync targets and session retries currently running

	sessionsMu   sync.Mutex
	lastSessions []session.Session // most recently loaded history, for the retry gate
	lastFilter   logs.Filter
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock sets the time source used for log windows and dashboards.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a service over the given bridge and store.
func NewService(b bridge.Bridge, store *registry.Store, opts ...Option) *Service {
	s := &Service{
		bridge:   b,
		store:    store,
		logger:   logging.Default(),
		clock:    time.Now,
		inFlight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the registry for snapshot reads.
func (s *Service) Store() *registry.Store {
	return s.store
}

// LoadProjects fetches the project collection and replaces the registry's
// copy. The loading flag is cleared on every settlement path.
func (s *Service) LoadProjects(ctx context.Context) error {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	projects, err := s.bridge.GetProjects(ctx)
	if err != nil {
		s.store.SetError(err)
		return err
	}

	s.store.SetProjects(projects)
	s.store.SetError(nil)
	return nil
}

// LoadSettings fetches the settings singleton into the registry.
func (s *Service) LoadSettings(ctx context.Context) error {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	cfg, err := s.bridge.GetSettings(ctx)
	if err != nil {
		s.store.SetError(err)
		return err
	}

	s.store.SetSettings(cfg)
	s.store.SetError(nil)
	return nil
}

// Project resolves one project from the registry snapshot.
func (s *Service) Project(projectID string) (project.Project, error) {
	for _, p := range s.store.Snapshot().Projects {
		if p.ID == projectID {
			return p, nil
		}
	}
	return project.Project{}, domainErrors.NewError(domainErrors.CodeNotFound,
		fmt.Sprintf("project %s not in the loaded set", projectID), domainErrors.ErrProjectNotFound)
}

// CreateProject submits a draft and adds the backend's answer to the
// registry. Nothing is added until the backend confirms.
func (s *Service) CreateProject(ctx context.Context, draft project.Draft) (project.Project, error) {
	if draft.Name == "" {
		return project.Project{}, domainErrors.NewError(domainErrors.CodeValidation,
			"project name is required", nil)
	}
	if draft.SourceFolderID == "" || draft.DestFolderID == "" {
		return project.Project{}, domainErrors.NewError(domainErrors.CodeValidation,
			"source and destination folders are required", nil)
	}

	created, err := s.bridge.CreateProject(ctx, draft)
	if err != nil {
		s.store.SetError(err)
		return project.Project{}, err
	}

	s.store.AddProject(created)
	s.store.SetError(nil)
	return created, nil
}

// UpdateProject submits a partial update and replaces the registry entry
// with the backend's merged project.
func (s *Service) UpdateProject(ctx context.Context, patch project.Patch) (project.Project, error) {
	if patch.ID == "" {
		return project.Project{}, domainErrors.NewError(domainErrors.CodeValidation,
			"project id is required", nil)
	}

	updated, err := s.bridge.UpdateProject(ctx, patch)
	if err != nil {
		s.store.SetError(err)
		return project.Project{}, err
	}

	s.store.UpdateProject(updated)
	s.store.SetError(nil)
	return updated, nil
}

// PauseProject suspends scheduled syncing for a project.
func (s *Service) PauseProject(ctx context.Context, projectID string) (project.Project, error) {
	status := project.StatusPaused
	return s.UpdateProject(ctx, project.Patch{ID: projectID, Status: &status})
}

// ResumeProject moves a paused or errored project back to active. The
// eligibility check runs before any bridge call.
func (s *Service) ResumeProject(ctx context.Context, projectID string) (project.Project, error) {
	p, err := s.Project(projectID)
	if err != nil {
		return project.Project{}, err
	}
	if !p.CanResume() {
		return project.Project{}, domainErrors.NewError(domainErrors.CodeEligibility,
			fmt.Sprintf("project %s is already active", projectID), nil)
	}

	status := project.StatusActive
	return s.UpdateProject(ctx, project.Patch{ID: projectID, Status: &status})
}

// DeleteProject soft-deletes a project on the backend, then drops it from
// the registry.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	if err := s.bridge.DeleteProject(ctx, projectID); err != nil {
		s.store.SetError(err)
		return err
	}

	s.store.DeleteProject(projectID)
	s.store.SetError(nil)
	return nil
}

// UpdateSettings validates a patch locally, submits it, and stores the
// backend's merged settings object.
func (s *Service) UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Settings, error) {
	if err := patch.Validate(); err != nil {
		return settings.Settings{}, domainErrors.NewError(domainErrors.CodeValidation,
			"invalid settings", err)
	}

	merged, err := s.bridge.UpdateSettings(ctx, patch)
	if err != nil {
		s.store.SetError(err)
		return settings.Settings{}, err
	}

	s.store.SetSettings(merged)
	s.store.SetError(nil)
	return merged, nil
}

// acquire marks a sync target as in flight, rejecting duplicates.
func (s *Service) acquire(target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[target] {
		return domainErrors.NewError(domainErrors.CodeEligibility,
			fmt.Sprintf("%s already has a run in flight", target), domainErrors.ErrSyncInFlight)
	}
	s.inFlight[target] = true
	return nil
}

func (s *Service) release(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, target)
}

// RunSyncAll triggers a sync run for every active project. At most one
// whole-service run may be in flight at a time.
func (s *Service) RunSyncAll(ctx context.Context) (session.SyncAck, error) {
	if err := s.acquire(SyncAllTarget); err != nil {
		return session.SyncAck{}, err
	}
	defer s.release(SyncAllTarget)

	ack, err := s.bridge.RunSyncAll(ctx)
	if err != nil {
		s.store.SetError(err)
		return session.SyncAck{}, err
	}
	return ack, nil
}

// RunSyncProject triggers a sync run for one project. Concurrent runs for
// the same project are rejected; different projects may run in parallel.
func (s *Service) RunSyncProject(ctx context.Context, projectID string) (session.SyncAck, error) {
	if err := s.acquire(projectID); err != nil {
		return session.SyncAck{}, err
	}
	defer s.release(projectID)

	ctx = logging.WithProjectID(ctx, projectID)
	ack, err := s.bridge.RunSyncProject(ctx, projectID)
	if err != nil {
		s.store.SetError(err)
		return session.SyncAck{}, err
	}
	return ack, nil
}

// Sessions loads session history through the filter and reconciles it
// into the log view. The raw list is kept for the retry gate.
func (s *Service) Sessions(ctx context.Context, filter logs.Filter) (logs.View, error) {
	s.store.SetLoading(true)
	defer s.store.SetLoading(false)

	sessions, err := s.bridge.GetSyncSessions(ctx, filter)
	if err != nil {
		s.store.SetError(err)
		return logs.View{}, err
	}

	s.sessionsMu.Lock()
	s.lastSessions = sessions
	s.lastFilter = filter
	s.sessionsMu.Unlock()

	s.store.SetError(nil)
	return logs.Reconcile(sessions, filter, s.clock()), nil
}

// SessionsByProject loads one project's session history.
func (s *Service) SessionsByProject(ctx context.Context, projectID string) ([]session.Session, error) {
	return s.bridge.GetSessionsByProject(ctx, projectID)
}

// FileLogs loads the per-file outcomes of one session.
func (s *Service) FileLogs(ctx context.Context, sessionID, projectID string) ([]session.FileLog, error) {
	return s.bridge.GetFileLogs(ctx, sessionID, projectID)
}

// RetrySession retries a failed session. Eligibility is checked against
// the loaded history before any bridge call, and the per-session in-flight
// marker rejects a second click while the first is still running. On
// success the history is reloaded so the new linkage comes from the
// backend, never synthesized locally.
func (s *Service) RetrySession(ctx context.Context, sessionID, projectID string) (session.Session, error) {
	s.sessionsMu.Lock()
	loaded := s.lastSessions
	s.sessionsMu.Unlock()

	if err := logs.CheckRetry(loaded, sessionID); err != nil {
		logging.LogRetryBlocked(ctx, s.logger, sessionID, err)
		return session.Session{}, err
	}

	target := "retry:" + sessionID
	if err := s.acquire(target); err != nil {
		return session.Session{}, err
	}
	defer s.release(target)

	ctx = logging.WithSessionID(ctx, sessionID)
	retry, err := s.bridge.RetrySync(ctx, sessionID, projectID)
	if err != nil {
		s.store.SetError(err)
		return session.Session{}, err
	}

	s.sessionsMu.Lock()
	filter := s.lastFilter
	s.sessionsMu.Unlock()
	if _, err := s.Sessions(ctx, filter); err != nil {
		// The retry itself settled; a failed refresh only stales the view.
		s.logger.WarnContext(ctx, "history refresh after retry failed", "error", err.Error())
	}

	s.store.SetError(nil)
	return retry, nil
}

// Heartbeats loads the quota-free liveness snapshots.
func (s *Service) Heartbeats(ctx context.Context) ([]project.Heartbeat, error) {
	return s.bridge.GetProjectHeartbeats(ctx)
}

// Dashboard loads the full history and derives the windowed activity
// summary shown on the status screen.
func (s *Service) Dashboard(ctx context.Context) (logs.DashboardStats, error) {
	sessions, err := s.bridge.GetSyncSessions(ctx, logs.NewFilter())
	if err != nil {
		s.store.SetError(err)
		return logs.DashboardStats{}, err
	}
	return logs.ComputeDashboard(sessions, s.clock()), nil
}

// VerifyHistory runs the chain linter over the most recently loaded
// session history.
func (s *Service) VerifyHistory() []logs.ChainIssue {
	s.sessionsMu.Lock()
	loaded := s.lastSessions
	s.sessionsMu.Unlock()
	return logs.VerifyChain(loaded)
}
