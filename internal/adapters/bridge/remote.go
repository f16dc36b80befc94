package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
	"github.com/eravn/syncdeck/internal/infrastructure/logging"
	"github.com/eravn/syncdeck/internal/infrastructure/tracing"
)

// Compile-time check that Remote implements Bridge.
var _ Bridge = (*Remote)(nil)

// callRequest is the wire envelope for one backend call.
type callRequest struct {
	Op   Operation         `json:"op"`
	Args []json.RawMessage `json:"args"`
}

// callResponse is the wire envelope for one backend response. A call
// settles with exactly one of Result or Error.
type callResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Remote is the Bridge implementation that speaks to the real backend
// over HTTP. It maps each typed operation onto a single POST of the
// {op, args} envelope and decodes the typed response.
type Remote struct {
	endpoint string
	client   *http.Client
	logger   *logging.Logger
	tracer   *tracing.Tracer
}

// RemoteOption is a functional option for configuring a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = c
	}
}

// WithRemoteLogger sets the logger.
func WithRemoteLogger(l *logging.Logger) RemoteOption {
	return func(r *Remote) {
		r.logger = l
	}
}

// WithRemoteTracer sets the tracer.
func WithRemoteTracer(t *tracing.Tracer) RemoteOption {
	return func(r *Remote) {
		r.tracer = t
	}
}

// NewRemote creates a bridge for the backend exec endpoint.
func NewRemote(endpoint string, opts ...RemoteOption) *Remote {
	r := &Remote{
		endpoint: endpoint,
		client:   http.DefaultClient,
		logger:   logging.Default(),
		tracer:   tracing.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// roundTrip issues one backend call and returns the raw result payload.
// Exactly one resolution path: a result, or an error with a readable
// message. Retry and timeout policy belong to callers.
func (r *Remote) roundTrip(ctx context.Context, op Operation, args ...any) (json.RawMessage, error) {
	ctx, span := r.tracer.StartBridgeSpan(ctx, string(op), "remote")
	start := time.Now()
	logging.LogBridgeCall(ctx, r.logger, string(op))

	raw, err := r.post(ctx, op, args)
	logging.LogBridgeSettled(ctx, r.logger, string(op), time.Since(start), err)
	if err != nil {
		span.EndWithError(err)
		return nil, err
	}
	span.End()
	return raw, nil
}

func (r *Remote) post(ctx context.Context, op Operation, args []any) (json.RawMessage, error) {
	env := callRequest{Op: op, Args: make([]json.RawMessage, 0, len(args))}
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("could not encode %s argument: %w", op, err)
		}
		env.Args = append(env.Args, raw)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("could not encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: backend unreachable", op), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: could not read response", op), err)
	}

	var out callResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: malformed response (status %d)", op, resp.StatusCode), err)
	}

	if !out.OK || resp.StatusCode >= http.StatusBadRequest {
		msg := out.Error
		if msg == "" {
			msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return nil, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: %s", op, msg), nil)
	}

	return out.Result, nil
}

// call issues an operation and decodes the result into T.
func call[T any](ctx context.Context, r *Remote, op Operation, args ...any) (T, error) {
	var result T

	raw, err := r.roundTrip(ctx, op, args...)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: could not decode result", op), err)
	}
	return result, nil
}

// GetProjects fetches the full project collection.
func (r *Remote) GetProjects(ctx context.Context) ([]project.Project, error) {
	return call[[]project.Project](ctx, r, OpGetProjects)
}

// GetProject fetches one project, or nil when the identity is unknown.
func (r *Remote) GetProject(ctx context.Context, projectID string) (*project.Project, error) {
	return call[*project.Project](ctx, r, OpGetProject, projectID)
}

// CreateProject submits a draft; the backend assigns identity and
// timestamps.
func (r *Remote) CreateProject(ctx context.Context, draft project.Draft) (project.Project, error) {
	return call[project.Project](ctx, r, OpCreateProject, draft)
}

// UpdateProject submits a partial update and returns the merged project.
func (r *Remote) UpdateProject(ctx context.Context, patch project.Patch) (project.Project, error) {
	return call[project.Project](ctx, r, OpUpdateProject, patch)
}

// DeleteProject soft-deletes a project on the backend.
func (r *Remote) DeleteProject(ctx context.Context, projectID string) error {
	ack, err := call[deleteAck](ctx, r, OpDeleteProject, projectID)
	if err != nil {
		return err
	}
	if !ack.Success {
		return domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("deleteProject: backend refused to delete %s", projectID), nil)
	}
	return nil
}

// RunSyncAll triggers a sync run for every active project.
func (r *Remote) RunSyncAll(ctx context.Context) (session.SyncAck, error) {
	return call[session.SyncAck](ctx, r, OpRunSyncAll)
}

// RunSyncProject triggers a sync run for one project.
func (r *Remote) RunSyncProject(ctx context.Context, projectID string) (session.SyncAck, error) {
	return call[session.SyncAck](ctx, r, OpRunSyncProject, projectID)
}

// GetSettings fetches the settings singleton.
func (r *Remote) GetSettings(ctx context.Context) (settings.Settings, error) {
	return call[settings.Settings](ctx, r, OpGetSettings)
}

// UpdateSettings submits a partial settings update and returns the merged
// whole object.
func (r *Remote) UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Settings, error) {
	return call[settings.Settings](ctx, r, OpUpdateSettings, patch)
}

// GetSyncSessions fetches session history matching the filter.
func (r *Remote) GetSyncSessions(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
	return call[[]session.Session](ctx, r, OpGetSyncSessions, filter)
}

// GetSessionsByProject fetches the session history of one project.
func (r *Remote) GetSessionsByProject(ctx context.Context, projectID string) ([]session.Session, error) {
	return call[[]session.Session](ctx, r, OpGetSessionsByProject, projectID)
}

// GetFileLogs fetches the per-file outcomes of one session. Safe to call
// any number of times; results always reflect current backend state.
func (r *Remote) GetFileLogs(ctx context.Context, sessionID, projectID string) ([]session.FileLog, error) {
	return call[[]session.FileLog](ctx, r, OpGetFileLogs, sessionID, projectID)
}

// RetrySync asks the backend to retry a failed session. The backend
// assigns the new session's identity and linkage fields; callers must
// reload rather than synthesize the edge locally.
func (r *Remote) RetrySync(ctx context.Context, sessionID, projectID string) (session.Session, error) {
	return call[session.Session](ctx, r, OpRetrySync, sessionID, projectID)
}

// GetProjectHeartbeats fetches the quota-free liveness snapshots.
func (r *Remote) GetProjectHeartbeats(ctx context.Context) ([]project.Heartbeat, error) {
	return call[[]project.Heartbeat](ctx, r, OpGetProjectHeartbeats)
}
