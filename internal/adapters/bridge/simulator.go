package bridge

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/eravn/syncdeck/internal/domain/errors"
	"github.com/eravn/syncdeck/internal/domain/logs"
	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/session"
	"github.com/eravn/syncdeck/internal/domain/settings"
	"github.com/eravn/syncdeck/internal/infrastructure/logging"
	"github.com/eravn/syncdeck/internal/infrastructure/tracing"
)

// Compile-time check that Simulator implements Bridge.
var _ Bridge = (*Simulator)(nil)

// Default artificial delay bounds. The randomized wait exists to exercise
// loading-state behavior in callers and must stay configurable so tests
// can disable it.
const (
	DefaultMinDelay = 300 * time.Millisecond
	DefaultMaxDelay = 800 * time.Millisecond
)

// Simulator is the Bridge implementation used when no backend is
// reachable. It serves a deterministic in-memory dataset keyed by
// operation name, after an artificial randomized delay. Mutating
// operations update the dataset so a subsequent reload observes the
// backend-assigned linkage, exactly like the real engine.
//
// The simulator owns only its dataset (backend-side state); it never
// touches shared client state.
type Simulator struct {
	mu       sync.Mutex
	data     *dataset
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
	clock    func() time.Time
	logger   *logging.Logger
	tracer   *tracing.Tracer
}

// SimulatorOption is a functional option for configuring a Simulator.
type SimulatorOption func(*Simulator)

// WithDelayRange sets the artificial delay bounds.
func WithDelayRange(min, max time.Duration) SimulatorOption {
	return func(s *Simulator) {
		s.minDelay = min
		s.maxDelay = max
	}
}

// WithoutDelay disables the artificial delay, for tests that assert on
// settlement rather than loading states.
func WithoutDelay() SimulatorOption {
	return func(s *Simulator) {
		s.minDelay = 0
		s.maxDelay = 0
	}
}

// WithSeed seeds the delay randomness for reproducible runs.
func WithSeed(seed int64) SimulatorOption {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock sets the time source used for dataset timestamps.
func WithClock(clock func() time.Time) SimulatorOption {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// WithSimulatorLogger sets the logger.
func WithSimulatorLogger(l *logging.Logger) SimulatorOption {
	return func(s *Simulator) {
		s.logger = l
	}
}

// WithSimulatorTracer sets the tracer.
func WithSimulatorTracer(t *tracing.Tracer) SimulatorOption {
	return func(s *Simulator) {
		s.tracer = t
	}
}

// NewSimulator creates a simulator with a freshly built canned dataset.
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		minDelay: DefaultMinDelay,
		maxDelay: DefaultMaxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:    time.Now,
		logger:   logging.Default(),
		tracer:   tracing.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = newDataset(s.clock())
	return s
}

// Call dispatches an operation by name, the same way the backend's own
// dispatcher would. Unknown names reject with an error; that is a hard
// local failure meant to catch integration drift during development.
func (s *Simulator) Call(ctx context.Context, op Operation, args ...any) (any, error) {
	ctx, span := s.tracer.StartBridgeSpan(ctx, string(op), "simulator")
	start := time.Now()
	logging.LogBridgeCall(ctx, s.logger, string(op))

	result, err := s.dispatch(ctx, op, args)
	logging.LogBridgeSettled(ctx, s.logger, string(op), time.Since(start), err)
	if err != nil {
		span.EndWithError(err)
		return nil, err
	}
	span.End()
	return result, nil
}

func (s *Simulator) dispatch(ctx context.Context, op Operation, args []any) (any, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch op {
	case OpGetProjects:
		return s.data.liveProjects(), nil
	case OpGetProject:
		id, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.findProject(id), nil
	case OpCreateProject:
		draft, err := argAs[project.Draft](op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.createProject(draft, s.clock()), nil
	case OpUpdateProject:
		patch, err := argAs[project.Patch](op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.updateProject(patch, s.clock())
	case OpDeleteProject:
		id, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.deleteProject(id)
	case OpRunSyncAll:
		return session.SyncAck{Success: true, Message: "sync all started"}, nil
	case OpRunSyncProject:
		id, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		if s.data.findProject(id) == nil {
			return nil, notFound("project", id)
		}
		return session.SyncAck{Success: true, Message: fmt.Sprintf("sync started for project %s", id)}, nil
	case OpGetSettings:
		return s.data.settings, nil
	case OpUpdateSettings:
		patch, err := argAs[settings.Patch](op, args, 0)
		if err != nil {
			return nil, err
		}
		s.data.settings = patch.Apply(s.data.settings)
		return s.data.settings, nil
	case OpGetSyncSessions:
		filter, err := argAs[logs.Filter](op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.filteredSessions(filter, s.clock()), nil
	case OpGetSessionsByProject:
		id, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return s.data.sessionsByProject(id), nil
	case OpGetFileLogs:
		sessionID, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		projectID, err := stringArg(op, args, 1)
		if err != nil {
			return nil, err
		}
		return s.data.fileLogsFor(sessionID, projectID)
	case OpRetrySync:
		sessionID, err := stringArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		projectID, err := stringArg(op, args, 1)
		if err != nil {
			return nil, err
		}
		return s.data.retrySession(sessionID, projectID, s.clock())
	case OpGetProjectHeartbeats:
		return s.data.heartbeats(s.clock()), nil
	default:
		return nil, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("unknown operation: %s", op), domainErrors.ErrUnknownOperation)
	}
}

// delay sleeps the artificial randomized wait, honoring the context.
func (s *Simulator) delay(ctx context.Context) error {
	if s.maxDelay <= 0 {
		return nil
	}
	d := s.minDelay
	if s.maxDelay > s.minDelay {
		s.mu.Lock()
		jitter := time.Duration(s.rng.Int63n(int64(s.maxDelay - s.minDelay)))
		s.mu.Unlock()
		d += jitter
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// stringArg extracts a string argument at position i.
func stringArg(op Operation, args []any, i int) (string, error) {
	return argAs[string](op, args, i)
}

// argAs extracts a typed argument at position i.
func argAs[T any](op Operation, args []any, i int) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: missing argument %d", op, i), nil)
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: argument %d has unexpected type %T", op, i, args[i]), nil)
	}
	return v, nil
}

func notFound(kind, id string) error {
	err := domainErrors.ErrProjectNotFound
	if kind == "session" {
		err = domainErrors.ErrSessionNotFound
	}
	return domainErrors.NewError(domainErrors.CodeNotFound,
		fmt.Sprintf("%s %s not found", kind, id), err)
}

// --- typed Bridge methods, all routed through the operation dispatcher ---

func (s *Simulator) GetProjects(ctx context.Context) ([]project.Project, error) {
	return callSim[[]project.Project](ctx, s, OpGetProjects)
}

func (s *Simulator) GetProject(ctx context.Context, projectID string) (*project.Project, error) {
	return callSim[*project.Project](ctx, s, OpGetProject, projectID)
}

func (s *Simulator) CreateProject(ctx context.Context, draft project.Draft) (project.Project, error) {
	return callSim[project.Project](ctx, s, OpCreateProject, draft)
}

func (s *Simulator) UpdateProject(ctx context.Context, patch project.Patch) (project.Project, error) {
	return callSim[project.Project](ctx, s, OpUpdateProject, patch)
}

func (s *Simulator) DeleteProject(ctx context.Context, projectID string) error {
	_, err := callSim[deleteAck](ctx, s, OpDeleteProject, projectID)
	return err
}

func (s *Simulator) RunSyncAll(ctx context.Context) (session.SyncAck, error) {
	return callSim[session.SyncAck](ctx, s, OpRunSyncAll)
}

func (s *Simulator) RunSyncProject(ctx context.Context, projectID string) (session.SyncAck, error) {
	return callSim[session.SyncAck](ctx, s, OpRunSyncProject, projectID)
}

func (s *Simulator) GetSettings(ctx context.Context) (settings.Settings, error) {
	return callSim[settings.Settings](ctx, s, OpGetSettings)
}

func (s *Simulator) UpdateSettings(ctx context.Context, patch settings.Patch) (settings.Settings, error) {
	return callSim[settings.Settings](ctx, s, OpUpdateSettings, patch)
}

func (s *Simulator) GetSyncSessions(ctx context.Context, filter logs.Filter) ([]session.Session, error) {
	return callSim[[]session.Session](ctx, s, OpGetSyncSessions, filter)
}

func (s *Simulator) GetSessionsByProject(ctx context.Context, projectID string) ([]session.Session, error) {
	return callSim[[]session.Session](ctx, s, OpGetSessionsByProject, projectID)
}

func (s *Simulator) GetFileLogs(ctx context.Context, sessionID, projectID string) ([]session.FileLog, error) {
	return callSim[[]session.FileLog](ctx, s, OpGetFileLogs, sessionID, projectID)
}

func (s *Simulator) RetrySync(ctx context.Context, sessionID, projectID string) (session.Session, error) {
	return callSim[session.Session](ctx, s, OpRetrySync, sessionID, projectID)
}

func (s *Simulator) GetProjectHeartbeats(ctx context.Context) ([]project.Heartbeat, error) {
	return callSim[[]project.Heartbeat](ctx, s, OpGetProjectHeartbeats)
}

// callSim dispatches through the operation table and asserts the result
// type. Handlers and method signatures are defined together, so a
// mismatch is a programming error surfaced as a bridge failure.
func callSim[T any](ctx context.Context, s *Simulator, op Operation, args ...any) (T, error) {
	var zero T
	result, err := s.Call(ctx, op, args...)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, domainErrors.NewError(domainErrors.CodeBridge,
			fmt.Sprintf("%s: result has unexpected type %T", op, result), nil)
	}
	return typed, nil
}

// newRunID builds a human-facing run identity for simulator-created
// sessions.
func newRunID(now time.Time) string {
	return fmt.Sprintf("run-%s-%s", now.Format("20060102"), uuid.NewString()[:8])
}
