package project

import (
	"testing"
	"time"
)

func TestProject_IsActive(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		want    bool
	}{
		{name: "active", project: Project{Status: StatusActive}, want: true},
		{name: "paused", project: Project{Status: StatusPaused}, want: false},
		{name: "errored", project: Project{Status: StatusError}, want: false},
		{name: "deleted but active status", project: Project{Status: StatusActive, Deleted: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.project.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_CanResume(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		want    bool
	}{
		{name: "paused", project: Project{Status: StatusPaused}, want: true},
		{name: "errored", project: Project{Status: StatusError}, want: true},
		{name: "already active", project: Project{Status: StatusActive}, want: false},
		{name: "deleted", project: Project{Status: StatusPaused, Deleted: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.project.CanResume(); got != tt.want {
				t.Errorf("CanResume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	base := Project{
		ID:          "proj-1",
		Name:        "Original",
		Description: "Original description",
		Status:      StatusActive,
	}

	newName := "Renamed"
	newStatus := StatusPaused
	patched := Patch{ID: "proj-1", Name: &newName, Status: &newStatus}.Apply(base)

	if patched.Name != "Renamed" {
		t.Errorf("expected name to change, got %q", patched.Name)
	}
	if patched.Status != StatusPaused {
		t.Errorf("expected status to change, got %q", patched.Status)
	}
	// Nil fields are left unchanged.
	if patched.Description != "Original description" {
		t.Errorf("description should be untouched, got %q", patched.Description)
	}
	// The input is not modified.
	if base.Name != "Original" || base.Status != StatusActive {
		t.Errorf("base project was mutated: %+v", base)
	}
}

func TestPatch_Apply_SyncStartDate(t *testing.T) {
	base := Project{ID: "proj-1"}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	patched := Patch{ID: "proj-1", SyncStartDate: &start}.Apply(base)
	if patched.SyncStartDate == nil || !patched.SyncStartDate.Equal(start) {
		t.Errorf("expected sync start date to be set, got %v", patched.SyncStartDate)
	}
}
