// Package session defines domain models for sync sessions and their
// per-file outcome records.
package session

import (
	"time"
)

// Outcome represents the result of a sync session.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"     // All files synced
	OutcomeError       Outcome = "error"       // Session failed; retryable
	OutcomeInterrupted Outcome = "interrupted" // Execution cutoff hit; surfaced but not retryable here
)

// Session is one execution attempt of a project's sync.
//
// A closed session is immutable except for the retry-linkage fields
// (Retried, RetriedBy), which the backend sets exactly once when another
// session retries this one.
type Session struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	ProjectName     string    `json:"projectName"` // Denormalized for display without a join
	RunID           string    `json:"runId"`
	StartedAt       time.Time `json:"timestamp"`
	DurationSeconds int       `json:"executionDurationSeconds"`
	Status          Outcome   `json:"status"`
	FilesCount      int       `json:"filesCount"`
	FailedCount     int       `json:"failedCount"`
	TotalSizeSynced int64     `json:"totalSizeSynced"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	RetryOf         string    `json:"retryOf,omitempty"`   // ID of the session this one retries
	Retried         bool      `json:"retried,omitempty"`   // True once some other session retried this one
	RetriedBy       string    `json:"retriedBy,omitempty"` // ID of the session that retried this one
}

// Retryable reports whether the operator may retry this session.
// Only failed sessions are retryable, and only once: retry chains are
// linear, not branching. Interrupted sessions are terminal here.
func (s *Session) Retryable() bool {
	return s.Status == OutcomeError && !s.Retried
}

// IsRetry reports whether this session was itself created as a retry.
func (s *Session) IsRetry() bool {
	return s.RetryOf != ""
}

// FileLog is one file's outcome within a session. The backend creates file
// logs atomically with the session's completion and never mutates them.
type FileLog struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"sessionId"`
	FileName     string    `json:"fileName"`
	SourceLink   string    `json:"sourceLink"`
	DestLink     string    `json:"destLink"`
	SourcePath   string    `json:"sourcePath"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
	FileSize     int64     `json:"fileSize,omitempty"`
	Status       string    `json:"status"`
}

// SyncAck is the backend's acknowledgement of a sync trigger.
type SyncAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
