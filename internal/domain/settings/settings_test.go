package settings

import "testing"

func TestNewDefault(t *testing.T) {
	s := NewDefault()

	if s.SyncCutoffSeconds != 300 {
		t.Errorf("expected cutoff 300, got %d", s.SyncCutoffSeconds)
	}
	if s.DefaultScheduleCron != "0 */6 * * *" {
		t.Errorf("unexpected schedule: %q", s.DefaultScheduleCron)
	}
	if s.MaxRetries != 3 || s.BatchSize != 450 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{name: "valid", mutate: func(s *Settings) {}, wantErr: false},
		{name: "zero cutoff", mutate: func(s *Settings) { s.SyncCutoffSeconds = 0 }, wantErr: true},
		{name: "negative batch size", mutate: func(s *Settings) { s.BatchSize = -1 }, wantErr: true},
		{name: "negative max retries", mutate: func(s *Settings) { s.MaxRetries = -1 }, wantErr: true},
		{name: "malformed cron", mutate: func(s *Settings) { s.DefaultScheduleCron = "every 6 hours" }, wantErr: true},
		{name: "six-field cron rejected", mutate: func(s *Settings) { s.DefaultScheduleCron = "0 0 */6 * * *" }, wantErr: true},
		{name: "empty cron allowed", mutate: func(s *Settings) { s.DefaultScheduleCron = "" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefault()
			tt.mutate(&s)

			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatch_Apply(t *testing.T) {
	base := NewDefault()

	batch := 200
	webhook := "https://hooks.example.com/sync"
	patched := Patch{BatchSize: &batch, WebhookURL: &webhook}.Apply(base)

	if patched.BatchSize != 200 {
		t.Errorf("expected batch size 200, got %d", patched.BatchSize)
	}
	if patched.WebhookURL != webhook {
		t.Errorf("expected webhook to be set, got %q", patched.WebhookURL)
	}
	// Untouched fields keep their values.
	if patched.SyncCutoffSeconds != 300 || patched.MaxRetries != 3 {
		t.Errorf("untouched fields changed: %+v", patched)
	}
	if base.BatchSize != 450 {
		t.Errorf("base settings were mutated: %+v", base)
	}
}

func TestPatch_Validate(t *testing.T) {
	valid := 100
	invalid := -5
	badCron := "not a cron"

	tests := []struct {
		name    string
		patch   Patch
		wantErr bool
	}{
		{name: "empty patch", patch: Patch{}, wantErr: false},
		{name: "valid batch size", patch: Patch{BatchSize: &valid}, wantErr: false},
		{name: "invalid cutoff", patch: Patch{SyncCutoffSeconds: &invalid}, wantErr: true},
		{name: "invalid cron", patch: Patch{DefaultScheduleCron: &badCron}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
