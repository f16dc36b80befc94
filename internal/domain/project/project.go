// Package project defines domain models for sync-pair projects.
package project

import (
	"time"
)

// Status represents the lifecycle state of a project.
type Status string

const (
	StatusActive Status = "active" // Project syncs on schedule
	StatusPaused Status = "paused" // Operator suspended syncing
	StatusError  Status = "error"  // Backend reported a sync failure
)

// SyncOutcome represents the result of the most recent sync run.
type SyncOutcome string

const (
	OutcomePending     SyncOutcome = "pending"
	OutcomeSuccess     SyncOutcome = "success"
	OutcomeInterrupted SyncOutcome = "interrupted"
	OutcomeError       SyncOutcome = "error"
)

// Project is a configured source-to-destination folder sync pair.
// Identity is assigned by the backend and immutable after creation.
type Project struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	SourceFolderID   string      `json:"sourceFolderId"`
	SourceFolderLink string      `json:"sourceFolderLink"`
	DestFolderID     string      `json:"destFolderId"`
	DestFolderLink   string      `json:"destFolderLink"`
	Status           Status      `json:"status"`
	SyncStartDate    *time.Time  `json:"syncStartDate,omitempty"` // Files older than this are skipped
	LastSyncAt       *time.Time  `json:"lastSyncTimestamp,omitempty"`
	LastSyncStatus   SyncOutcome `json:"lastSyncStatus,omitempty"`
	FilesCount       int         `json:"filesCount"`
	TotalSize        int64       `json:"totalSize"`
	Deleted          bool        `json:"deleted"` // Soft delete keeps session history attributable
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// IsActive returns true if the project currently syncs on schedule.
func (p *Project) IsActive() bool {
	return p.Status == StatusActive && !p.Deleted
}

// CanResume reports whether an operator action may move the project back
// to active. Leaving the error state always requires an explicit action.
func (p *Project) CanResume() bool {
	return !p.Deleted && (p.Status == StatusPaused || p.Status == StatusError)
}

// Draft holds the operator-supplied fields for creating a project.
// The backend assigns identity and timestamps.
type Draft struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	SourceFolderID   string     `json:"sourceFolderId"`
	SourceFolderLink string     `json:"sourceFolderLink"`
	DestFolderID     string     `json:"destFolderId"`
	DestFolderLink   string     `json:"destFolderLink"`
	SyncStartDate    *time.Time `json:"syncStartDate,omitempty"`
}

// Patch is a partial project update. Nil fields are left unchanged.
// ID is required and immutable.
type Patch struct {
	ID            string     `json:"id"`
	Name          *string    `json:"name,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Status        *Status    `json:"status,omitempty"`
	SyncStartDate *time.Time `json:"syncStartDate,omitempty"`
}

// Apply copies the patch's non-nil fields onto a project and returns the
// result. The input project is not modified.
func (p Patch) Apply(base Project) Project {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	if p.Status != nil {
		base.Status = *p.Status
	}
	if p.SyncStartDate != nil {
		base.SyncStartDate = p.SyncStartDate
	}
	return base
}

// Heartbeat is a quota-free liveness snapshot for one project.
// It is superseded on every poll and never persisted by the client.
type Heartbeat struct {
	ProjectID          string    `json:"projectId"`
	LastCheckTimestamp time.Time `json:"lastCheckTimestamp"`
	LastStatus         string    `json:"lastStatus"`
}
