// Package settings defines the global application settings singleton and
// its partial-update semantics.
package settings

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Settings is the global sync-service configuration. It is read and
// written as a whole object; partial edits go through a Patch so
// concurrent edits on the client cannot drop fields.
type Settings struct {
	SyncCutoffSeconds   int    `json:"syncCutoffSeconds"`
	DefaultScheduleCron string `json:"defaultScheduleCron"`
	WebhookURL          string `json:"webhookUrl"`
	FirebaseProjectID   string `json:"firebaseProjectId"`
	EnableNotifications bool   `json:"enableNotifications"`
	MaxRetries          int    `json:"maxRetries"`
	BatchSize           int    `json:"batchSize"`
}

// Default settings values, used before the first load from the backend.
const (
	DefaultSyncCutoffSeconds = 300
	DefaultScheduleCron      = "0 */6 * * *"
	DefaultMaxRetries        = 3
	DefaultBatchSize         = 450
)

// NewDefault returns settings with sensible defaults.
func NewDefault() Settings {
	return Settings{
		SyncCutoffSeconds:   DefaultSyncCutoffSeconds,
		DefaultScheduleCron: DefaultScheduleCron,
		MaxRetries:          DefaultMaxRetries,
		BatchSize:           DefaultBatchSize,
	}
}

// cronParser accepts standard 5-field cron expressions, matching what the
// backend scheduler consumes.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks the settings for values the backend would reject.
// Validation failures never reach the bridge.
func (s *Settings) Validate() error {
	var errs []error

	if s.SyncCutoffSeconds <= 0 {
		errs = append(errs, errors.New("syncCutoffSeconds must be positive"))
	}
	if s.BatchSize <= 0 {
		errs = append(errs, errors.New("batchSize must be positive"))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, errors.New("maxRetries must be non-negative"))
	}
	if s.DefaultScheduleCron != "" {
		if _, err := cronParser.Parse(s.DefaultScheduleCron); err != nil {
			errs = append(errs, fmt.Errorf("invalid defaultScheduleCron %q: %w", s.DefaultScheduleCron, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	SyncCutoffSeconds   *int    `json:"syncCutoffSeconds,omitempty"`
	DefaultScheduleCron *string `json:"defaultScheduleCron,omitempty"`
	WebhookURL          *string `json:"webhookUrl,omitempty"`
	FirebaseProjectID   *string `json:"firebaseProjectId,omitempty"`
	EnableNotifications *bool   `json:"enableNotifications,omitempty"`
	MaxRetries          *int    `json:"maxRetries,omitempty"`
	BatchSize           *int    `json:"batchSize,omitempty"`
}

// Apply merges the patch's non-nil fields onto base and returns the result.
func (p Patch) Apply(base Settings) Settings {
	if p.SyncCutoffSeconds != nil {
		base.SyncCutoffSeconds = *p.SyncCutoffSeconds
	}
	if p.DefaultScheduleCron != nil {
		base.DefaultScheduleCron = *p.DefaultScheduleCron
	}
	if p.WebhookURL != nil {
		base.WebhookURL = *p.WebhookURL
	}
	if p.FirebaseProjectID != nil {
		base.FirebaseProjectID = *p.FirebaseProjectID
	}
	if p.EnableNotifications != nil {
		base.EnableNotifications = *p.EnableNotifications
	}
	if p.MaxRetries != nil {
		base.MaxRetries = *p.MaxRetries
	}
	if p.BatchSize != nil {
		base.BatchSize = *p.BatchSize
	}
	return base
}

// Validate checks the patched result would be acceptable, without needing
// the base object for fields the patch does not touch.
func (p Patch) Validate() error {
	var errs []error

	if p.SyncCutoffSeconds != nil && *p.SyncCutoffSeconds <= 0 {
		errs = append(errs, errors.New("syncCutoffSeconds must be positive"))
	}
	if p.BatchSize != nil && *p.BatchSize <= 0 {
		errs = append(errs, errors.New("batchSize must be positive"))
	}
	if p.MaxRetries != nil && *p.MaxRetries < 0 {
		errs = append(errs, errors.New("maxRetries must be non-negative"))
	}
	if p.DefaultScheduleCron != nil && *p.DefaultScheduleCron != "" {
		if _, err := cronParser.Parse(*p.DefaultScheduleCron); err != nil {
			errs = append(errs, fmt.Errorf("invalid defaultScheduleCron %q: %w", *p.DefaultScheduleCron, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
