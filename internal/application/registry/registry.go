// Package registry holds the client-side view of shared state: the
// project collection, the settings singleton, and transient UI state.
// All changes go through named intents on a Store; there is no other
// write path. Identity is the only merge key, and the backend's answer
// always wins over anything derived locally.
package registry

import (
	"sync"

	"github.com/eravn/syncdeck/internal/domain/project"
	"github.com/eravn/syncdeck/internal/domain/settings"
)

// Theme is the operator's display preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// State is one immutable snapshot of the shared registry.
type State struct {
	Projects []project.Project
	Settings settings.Settings
	Loading  bool
	Err      error
	Theme    Theme
}

// Store is the single owner of shared client state. Constructed
// explicitly and passed to whoever needs it; there is no package-level
// instance.
type Store struct {
	mu    sync.RWMutex
	state State
}

// NewStore returns a store with empty projects, default settings, and the
// light theme.
func NewStore() *Store {
	return &Store{
		state: State{
			Projects: []project.Project{},
			Settings: settings.NewDefault(),
			Theme:    ThemeLight,
		},
	}
}

// Snapshot returns a copy of the current state. The projects slice is
// copied so callers can range over it while intents land concurrently.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.state
	snap.Projects = make([]project.Project, len(s.state.Projects))
	copy(snap.Projects, s.state.Projects)
	return snap
}

// SetProjects replaces the whole project collection. Used after a load;
// the backend's list wins over any local state.
func (s *Store) SetProjects(projects []project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Projects = make([]project.Project, len(projects))
	copy(s.state.Projects, projects)
}

// AddProject appends a backend-confirmed project. If the identity is
// already present the existing entry is replaced, keeping IDs unique.
func (s *Store) AddProject(p project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Projects {
		if s.state.Projects[i].ID == p.ID {
			s.state.Projects[i] = p
			return
		}
	}
	s.state.Projects = append(s.state.Projects, p)
}

// UpdateProject replaces the entry with the same identity. A miss is a
// no-op: the caller raced a delete, and the next load reconciles.
func (s *Store) UpdateProject(p project.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Projects {
		if s.state.Projects[i].ID == p.ID {
			s.state.Projects[i] = p
			return
		}
	}
}

// DeleteProject removes the entry with the given identity. A miss is a
// no-op.
func (s *Store) DeleteProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Projects {
		if s.state.Projects[i].ID == projectID {
			s.state.Projects = append(s.state.Projects[:i], s.state.Projects[i+1:]...)
			return
		}
	}
}

// SetSettings replaces the settings singleton with the backend's merged
// answer.
func (s *Store) SetSettings(v settings.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = v
}

// SetLoading flips the shared loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = loading
}

// SetError records the most recent shared failure, or clears it with nil.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Err = err
}

// SetTheme records the display preference.
func (s *Store) SetTheme(t Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = t
}
