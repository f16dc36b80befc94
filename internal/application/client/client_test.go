package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"

	"github.com/eravn/syncdeck/internal/application/registry"
)

// fakeBridge lets each test script the backend per operation. Unset
// operations settle with zero values.
type fakeBridge struct {
	getProjects     func(ctx context.Context) ([]project.Project, error)
	createProject   func(ctx context.Context, draft project.Draft) (project.Project, error)
	updateProject   func(ctx context.Context, patch project.Patch) (project.Project, error)
	deleteProject   func(ctx context.Context, projectID string) error
	runSyncAll      func(ctx context.Context) (session.SyncAck, error)
	runSyncProject  func(ctx context.Context, projectID string) (session.SyncAck, error)
	getSettings     func(ctx context.Context) (settings.Settings, error)
	updateSettings  func(ctx context.Context, patch settings.Patch) (settings.Settings, error)
	getSyncSessions func(ctx context.Context, filter logs.Filter) ([]session.Session, error)
	retrySync       func(ctx context.Context, sessionID, projectID string) (session.Session, error)
}

func (f *fakeBridge) GetProjects(ctx context.Context) ([]project.Project, error) {
	if f.getProjects != nil {
		return f.getProjects(ctx)
	}
	return nil, nil
}

func (f *fakeBridge) GetProject(ctx context.Context, projectID string) (*project.Project, error) {
	return nil, nil
}

func (f *fakeBridge) CreateProject(ctx context.Context, draft project.Draft) (project.Project, error) {
	if f.createProject != nil {
		return f.createProject(ctx, draft)
	}
	return project.Project{}, nil
}

func (f *fakeBridge) UpdateProject(ctx context.Context, patch project.Patch) (project.Project, error) {
	if f.updateProject != nil {
		return f.updateProject(ctx, patch)
	}
	return project.Project{}, nil
}

func (f *fakeBridge) DeleteProject(ctx context.Context, projectID string) error {
	if f.deleteProject != nil {
		return f.deleteProject(ctx, projectID)
	}
	return nil
}

func (f *fakeBridge) RunSyncAll(ctx context.Context) (session.SyncAck, error) {
	if f.runSyncAll != nil {
		return f.runSyncAll(ctx)
	}
	return session.SyncAck{Success: true}, nil
}

func (f *fakeBridge) RunSyncProject(ctx context.Context, projectID string) (session.SyncAck, error) {
	if f.runSyncProject != nil {
		return f.runSyncProject(ctx, projectID)
	}
	return session.SyncAck{Success: true}, nil
}

func (f *fakeBridge) GetSettings(ctx context.Context) (settings.Settings, error) {
	if f.getSettings != nil {
		return f.getSettings(ctx)
	}
	return settings.NewDefault(), nil
}

func (f *fakeBridge) UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Settings, error) {
	if f.updateSettings != nil {
		return f.updateSettings(ctx, patch)
	}
	return settings.NewDefault(), nil
}

func (f *fakeBridge) GetSyncSessions(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
	if f.getSyncSessions != nil {
		return f.getSyncSessions(ctx, filter)
	}
	return nil, nil
}

func (f *fakeBridge) GetSessionsByProject(ctx context.Context, projectID string) ([]session.Session, error) {
	return nil, nil
}

func (f *fakeBridge) GetFileLogs(ctx context.Context, sessionID, projectID string) ([]session.FileLog, error) {
	return nil, nil
}

func (f *fakeBridge) RetrySync(ctx context.Context, sessionID, projectID string) (session.Session, error) {
	if f.retrySync != nil {
		return f.retrySync(ctx, sessionID, projectID)
	}
	return session.Session{}, nil
}

func (f *fakeBridge) GetProjectHeartbeats(ctx context.Context) ([]project.Heartbeat, error) {
	return nil, nil
}

func newTestService(b *fakeBridge) (*Service, *registry.Store) {
	store := registry.NewStore()
	svc := NewService(b, store, WithClock(func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}))
	return svc, store
}

func TestService_LoadProjects(t *testing.T) {
	fake := &fakeBridge{
		getProjects: func(ctx context.Context) ([]project.Project, error) {
			return []project.Project{{ID: "proj-1"}, {ID: "proj-2"}}, nil
		},
	}
	svc, store := newTestService(fake)

	if err := svc.LoadProjects(context.Background()); err != nil {
		t.Fatalf("LoadProjects failed: %v", err)
	}

	state := store.Snapshot()
	if len(state.Projects) != 2 {
		t.Errorf("expected 2 projects in registry, got %d", len(state.Projects))
	}
	if state.Loading {
		t.Error("loading flag must be cleared after settlement")
	}
	if state.Err != nil {
		t.Errorf("error should be cleared on success, got %v", state.Err)
	}
}

func TestService_LoadProjects_Failure(t *testing.T) {
	boom := errors.New("backend unreachable")
	fake := &fakeBridge{
		getProjects: func(ctx context.Context) ([]project.Project, error) {
			return nil, boom
		},
	}
	svc, store := newTestService(fake)
	store.SetProjects([]project.Project{{ID: "proj-kept"}})

	err := svc.LoadProjects(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the bridge error, got %v", err)
	}

	state := store.Snapshot()
	// A failed load leaves the previous collection intact.
	if len(state.Projects) != 1 || state.Projects[0].ID != "proj-kept" {
		t.Errorf("failed load must not touch projects, got %+v", state.Projects)
	}
	if state.Loading {
		t.Error("loading flag must be cleared on the failure path too")
	}
	if !errors.Is(state.Err, boom) {
		t.Errorf("error should be recorded, got %v", state.Err)
	}
}

func TestService_CreateProject_ValidatesBeforeBridge(t *testing.T) {
	fake := &fakeBridge{
		createProject: func(ctx context.Context, draft project.Draft) (project.Project, error) {
			t.Fatal("bridge must not be called for an invalid draft")
			return project.Project{}, nil
		},
	}
	svc, store := newTestService(fake)

	_, err := svc.CreateProject(context.Background(), project.Draft{Name: ""})
	if domainErrors.CodeOf(err) != domainErrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.Snapshot().Projects) != 0 {
		t.Error("nothing may be added before the backend confirms")
	}
}

func TestService_CreateProject_FailureLeavesRegistryUntouched(t *testing.T) {
	boom := errors.New("quota exceeded")
	fake := &fakeBridge{
		createProject: func(ctx context.Context, draft project.Draft) (project.Project, error) {
			return project.Project{}, boom
		},
	}
	svc, store := newTestService(fake)

	draft := project.Draft{Name: "New", SourceFolderID: "src", DestFolderID: "dst"}
	if _, err := svc.CreateProject(context.Background(), draft); !errors.Is(err, boom) {
		t.Fatalf("expected bridge error, got %v", err)
	}
	if len(store.Snapshot().Projects) != 0 {
		t.Error("failed create must not add a project")
	}
}

func TestService_ResumeProject_Eligibility(t *testing.T) {
	fake := &fakeBridge{
		updateProject: func(ctx context.Context, patch project.Patch) (project.Project, error) {
			return patch.Apply(project.Project{ID: patch.ID, Status: project.StatusPaused}), nil
		},
	}
	svc, store := newTestService(fake)
	store.SetProjects([]project.Project{
		{ID: "proj-paused", Status: project.StatusPaused},
		{ID: "proj-active", Status: project.StatusActive},
	})

	resumed, err := svc.ResumeProject(context.Background(), "proj-paused")
	if err != nil {
		t.Fatalf("ResumeProject failed: %v", err)
	}
	if resumed.Status != project.StatusActive {
		t.Errorf("expected active status, got %s", resumed.Status)
	}

	_, err = svc.ResumeProject(context.Background(), "proj-active")
	if domainErrors.CodeOf(err) != domainErrors.CodeEligibility {
		t.Errorf("resuming an active project must fail eligibility, got %v", err)
	}

	_, err = svc.ResumeProject(context.Background(), "proj-missing")
	if !errors.Is(err, domainErrors.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestService_UpdateSettings_ValidatesBeforeBridge(t *testing.T) {
	fake := &fakeBridge{
		updateSettings: func(ctx context.Context, patch settings.Patch) (settings.Settings, error) {
			t.Fatal("bridge must not be called for an invalid patch")
			return settings.Settings{}, nil
		},
	}
	svc, _ := newTestService(fake)

	bad := -1
	_, err := svc.UpdateSettings(context.Background(), settings.Patch{BatchSize: &bad})
	if domainErrors.CodeOf(err) != domainErrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_RunSync_InFlightExclusivity(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce sync.Once
	fake := &fakeBridge{
		runSyncAll: func(ctx context.Context) (session.SyncAck, error) {
			startOnce.Do(func() { close(started) })
			<-release
			return session.SyncAck{Success: true}, nil
		},
	}
	svc, _ := newTestService(fake)

	done := make(chan error, 1)
	go func() {
		_, err := svc.RunSyncAll(context.Background())
		done <- err
	}()
	<-started

	// A second whole-service run while the first is in flight is rejected.
	_, err := svc.RunSyncAll(context.Background())
	if !errors.Is(err, domainErrors.ErrSyncInFlight) {
		t.Fatalf("expected ErrSyncInFlight, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Once released, a new run may start.
	if _, err := svc.RunSyncAll(context.Background()); err != nil {
		t.Fatalf("run after release failed: %v", err)
	}
}

func TestService_RunSyncProject_DistinctProjectsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	fake := &fakeBridge{
		runSyncProject: func(ctx context.Context, projectID string) (session.SyncAck, error) {
			if projectID == "proj-slow" {
				<-release
			}
			return session.SyncAck{Success: true}, nil
		},
	}
	svc, _ := newTestService(fake)

	done := make(chan error, 1)
	go func() {
		_, err := svc.RunSyncProject(context.Background(), "proj-slow")
		done <- err
	}()

	// A different project is not blocked by the slow one.
	if _, err := svc.RunSyncProject(context.Background(), "proj-fast"); err != nil {
		t.Fatalf("parallel run for another project failed: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow run failed: %v", err)
	}
}

func TestService_RetrySession_RequiresLoadedHistory(t *testing.T) {
	fake := &fakeBridge{
		retrySync: func(ctx context.Context, sessionID, projectID string) (session.Session, error) {
			t.Fatal("bridge must not be called when the gate rejects")
			return session.Session{}, nil
		},
	}
	svc, _ := newTestService(fake)

	_, err := svc.RetrySession(context.Background(), "sess-1", "proj-1")
	if !errors.Is(err, domainErrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound without loaded history, got %v", err)
	}
}

func TestService_RetrySession_ReloadsHistory(t *testing.T) {
	failed := session.Session{
		ID: "sess-1", ProjectID: "proj-1",
		StartedAt: time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC),
		Status:    session.OutcomeError,
	}
	retry := session.Session{
		ID: "sess-2", ProjectID: "proj-1",
		StartedAt: time.Date(2026, 3, 15, 11, 0, 0, 0, time.UTC),
		Status:    session.OutcomeSuccess,
		RetryOf:   "sess-1",
	}

	retried := false
	loads := 0
	fake := &fakeBridge{
		getSyncSessions: func(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
			loads++
			if !retried {
				return []session.Session{failed}, nil
			}
			settled := failed
			settled.Retried = true
			settled.RetriedBy = retry.ID
			return []session.Session{retry, settled}, nil
		},
		retrySync: func(ctx context.Context, sessionID, projectID string) (session.Session, error) {
			retried = true
			return retry, nil
		},
	}
	svc, _ := newTestService(fake)

	if _, err := svc.Sessions(context.Background(), logs.NewFilter()); err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}

	got, err := svc.RetrySession(context.Background(), "sess-1", "proj-1")
	if err != nil {
		t.Fatalf("RetrySession failed: %v", err)
	}
	if got.RetryOf != "sess-1" {
		t.Errorf("retry must reference the original, got %q", got.RetryOf)
	}
	if loads != 2 {
		t.Errorf("expected a reload after the retry, got %d loads", loads)
	}

	// The reloaded history carries the backend's linkage, so a second
	// attempt is blocked before any bridge call.
	_, err = svc.RetrySession(context.Background(), "sess-1", "proj-1")
	if !errors.Is(err, domainErrors.ErrAlreadyRetried) {
		t.Errorf("expected ErrAlreadyRetried, got %v", err)
	}
	if issues := svc.VerifyHistory(); len(issues) != 0 {
		t.Errorf("reloaded history has linkage issues: %v", issues)
	}
}

func TestService_Sessions_KeepsFilterForRefresh(t *testing.T) {
	var seen []logs.Filter
	fake := &fakeBridge{
		getSyncSessions: func(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
			seen = append(seen, filter)
			return nil, nil
		},
		retrySync: func(ctx context.Context, sessionID, projectID string) (session.Session, error) {
			return session.Session{ID: "sess-r", RetryOf: sessionID}, nil
		},
	}
	svc, _ := newTestService(fake)

	filter := logs.Filter{WindowDays: 7, Status: "error", Search: "media"}
	if _, err := svc.Sessions(context.Background(), filter); err != nil {
		t.Fatalf("Sessions failed: %v", err)
	}
	if len(seen) != 1 || seen[0] != filter {
		t.Fatalf("unexpected filters: %+v", seen)
	}
}

func TestService_Dashboard(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fake := &fakeBridge{
		getSyncSessions: func(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
			return []session.Session{
				{ID: "a", StartedAt: now.Add(-time.Hour), FilesCount: 3},
				{ID: "b", StartedAt: now.Add(-3 * 24 * time.Hour), FilesCount: 4},
			}, nil
		},
	}
	svc, _ := newTestService(fake)

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if stats.Today.Sessions != 1 || stats.Today.Files != 3 {
		t.Errorf("unexpected today stats: %+v", stats.Today)
	}
	if stats.Last7Day.Sessions != 2 || stats.Last7Day.Files != 7 {
		t.Errorf("unexpected last-7-day stats: %+v", stats.Last7Day)
	}
}
