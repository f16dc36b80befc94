package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
)

var simNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestSimulator() *Simulator {
	return NewSimulator(WithoutDelay(), WithClock(func() time.Time { return simNow }))
}

func TestSimulator_GetProjects(t *testing.T) {
	sim := newTestSimulator()

	projects, err := sim.GetProjects(context.Background())
	if err != nil {
		t.Fatalf("GetProjects failed: %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 canned projects, got %d", len(projects))
	}
}

func TestSimulator_GetProject(t *testing.T) {
	sim := newTestSimulator()

	p, err := sim.GetProject(context.Background(), "proj-finance")
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if p == nil || p.Name != "Finance Reports" {
		t.Errorf("unexpected project: %+v", p)
	}

	// Unknown identities resolve with nil, not an error.
	p, err = sim.GetProject(context.Background(), "proj-missing")
	if err != nil {
		t.Fatalf("GetProject for unknown id failed: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for unknown project, got %+v", p)
	}
}

func TestSimulator_UnknownOperation(t *testing.T) {
	sim := newTestSimulator()

	_, err := sim.Call(context.Background(), Operation("frobnicate"))
	if !errors.Is(err, domainErrors.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if domainErrors.CodeOf(err) != domainErrors.CodeBridge {
		t.Errorf("expected bridge code, got %s", domainErrors.CodeOf(err))
	}
}

func TestSimulator_CreateProject(t *testing.T) {
	sim := newTestSimulator()

	created, err := sim.CreateProject(context.Background(), project.Draft{
		Name:           "Archive Backups",
		SourceFolderID: "src-arc-010",
		DestFolderID:   "dst-arc-010",
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if created.ID == "" {
		t.Error("backend must assign an identity")
	}
	if created.Status != project.StatusActive {
		t.Errorf("new projects start active, got %s", created.Status)
	}
	if created.LastSyncStatus != project.OutcomePending {
		t.Errorf("new projects start pending, got %s", created.LastSyncStatus)
	}

	projects, err := sim.GetProjects(context.Background())
	if err != nil {
		t.Fatalf("GetProjects failed: %v", err)
	}
	if len(projects) != 4 {
		t.Errorf("expected 4 projects after create, got %d", len(projects))
	}
}

func TestSimulator_UpdateProject_NotFound(t *testing.T) {
	sim := newTestSimulator()

	name := "Ghost"
	_, err := sim.UpdateProject(context.Background(), project.Patch{ID: "proj-missing", Name: &name})
	if !errors.Is(err, domainErrors.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestSimulator_DeleteProject(t *testing.T) {
	sim := newTestSimulator()
	ctx := context.Background()

	if err := sim.DeleteProject(ctx, "proj-legal"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	// Deleted projects disappear from every read surface.
	projects, err := sim.GetProjects(ctx)
	if err != nil {
		t.Fatalf("GetProjects failed: %v", err)
	}
	for _, p := range projects {
		if p.ID == "proj-legal" {
			t.Error("deleted project still listed")
		}
	}

	heartbeats, err := sim.GetProjectHeartbeats(ctx)
	if err != nil {
		t.Fatalf("GetProjectHeartbeats failed: %v", err)
	}
	if len(heartbeats) != 2 {
		t.Errorf("expected 2 heartbeats after delete, got %d", len(heartbeats))
	}

	// A second delete is a miss.
	err = sim.DeleteProject(ctx, "proj-legal")
	if !errors.Is(err, domainErrors.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound on double delete, got %v", err)
	}
}

func TestSimulator_GetSyncSessions_Filtered(t *testing.T) {
	sim := newTestSimulator()

	filter := logs.Filter{WindowDays: logs.AllTime, Status: "error"}
	sessions, err := sim.GetSyncSessions(context.Background(), filter)
	if err != nil {
		t.Fatalf("GetSyncSessions failed: %v", err)
	}
	for _, s := range sessions {
		if s.Status != session.OutcomeError {
			t.Errorf("filter leaked session %s with status %s", s.ID, s.Status)
		}
	}
	if len(sessions) != 2 {
		t.Errorf("expected 2 failed sessions, got %d", len(sessions))
	}
}

func TestSimulator_GetFileLogs(t *testing.T) {
	sim := newTestSimulator()

	fileLogs, err := sim.GetFileLogs(context.Background(), "sess-1001", "proj-finance")
	if err != nil {
		t.Fatalf("GetFileLogs failed: %v", err)
	}
	if len(fileLogs) != 2 {
		t.Errorf("expected 2 file logs, got %d", len(fileLogs))
	}

	// Session and project must pair up.
	_, err = sim.GetFileLogs(context.Background(), "sess-1001", "proj-media")
	if !errors.Is(err, domainErrors.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for mismatched pair, got %v", err)
	}
}

func TestSimulator_RetrySync(t *testing.T) {
	sim := newTestSimulator()
	ctx := context.Background()

	retry, err := sim.RetrySync(ctx, "sess-1002", "proj-media")
	if err != nil {
		t.Fatalf("RetrySync failed: %v", err)
	}
	if retry.RetryOf != "sess-1002" {
		t.Errorf("retry must reference the original, got %q", retry.RetryOf)
	}
	if retry.ProjectID != "proj-media" {
		t.Errorf("retry must stay in the project, got %q", retry.ProjectID)
	}

	// A reload observes consistent linkage on both sides.
	sessions, err := sim.GetSyncSessions(ctx, logs.Filter{WindowDays: logs.AllTime, Status: logs.StatusAll})
	if err != nil {
		t.Fatalf("GetSyncSessions failed: %v", err)
	}
	byID := make(map[string]session.Session)
	for _, s := range sessions {
		byID[s.ID] = s
	}
	orig, ok := byID["sess-1002"]
	if !ok {
		t.Fatal("original session missing after retry")
	}
	if !orig.Retried || orig.RetriedBy != retry.ID {
		t.Errorf("original linkage not rewritten: retried=%v retriedBy=%q", orig.Retried, orig.RetriedBy)
	}
	if issues := logs.VerifyChain(sessions); len(issues) != 0 {
		t.Errorf("retry produced inconsistent chains: %v", issues)
	}

	// Each failure can be retried at most once.
	_, err = sim.RetrySync(ctx, "sess-1002", "proj-media")
	if !errors.Is(err, domainErrors.ErrAlreadyRetried) {
		t.Errorf("expected ErrAlreadyRetried on second retry, got %v", err)
	}
}

func TestSimulator_RetrySync_Eligibility(t *testing.T) {
	sim := newTestSimulator()
	ctx := context.Background()

	tests := []struct {
		name      string
		sessionID string
		projectID string
		wantErr   error
	}{
		{name: "successful session", sessionID: "sess-1001", projectID: "proj-finance", wantErr: domainErrors.ErrNotRetryable},
		{name: "interrupted session", sessionID: "sess-1004", projectID: "proj-media", wantErr: domainErrors.ErrNotRetryable},
		{name: "already retried", sessionID: "sess-1005", projectID: "proj-finance", wantErr: domainErrors.ErrAlreadyRetried},
		{name: "unknown session", sessionID: "sess-0000", projectID: "proj-media", wantErr: domainErrors.ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.RetrySync(ctx, tt.sessionID, tt.projectID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSimulator_UpdateSettings(t *testing.T) {
	sim := newTestSimulator()
	ctx := context.Background()

	batch := 100
	merged, err := sim.UpdateSettings(ctx, settings.Patch{BatchSize: &batch})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if merged.BatchSize != 100 {
		t.Errorf("expected batch size 100, got %d", merged.BatchSize)
	}
	// Untouched fields survive the merge.
	if merged.WebhookURL == "" {
		t.Error("webhook url lost during partial update")
	}

	current, err := sim.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if current != merged {
		t.Errorf("settings read back differs: %+v vs %+v", current, merged)
	}
}

func TestSimulator_RunSyncProject_UnknownProject(t *testing.T) {
	sim := newTestSimulator()

	_, err := sim.RunSyncProject(context.Background(), "proj-missing")
	if !errors.Is(err, domainErrors.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}

	ack, err := sim.RunSyncProject(context.Background(), "proj-finance")
	if err != nil {
		t.Fatalf("RunSyncProject failed: %v", err)
	}
	if !ack.Success {
		t.Errorf("expected success ack, got %+v", ack)
	}
}

func TestSimulator_DelayHonorsContext(t *testing.T) {
	sim := NewSimulator(
		WithDelayRange(5*time.Second, 5*time.Second),
		WithClock(func() time.Time { return simNow }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.GetProjects(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
