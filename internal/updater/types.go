package updater

import (
	"context"
	"time"
)

// State is the updater's position in the check/apply cycle.
type State string

// Update states.
const (
	StateIdle      State = "idle"
	StateChecking  State = "checking"
	StateAvailable State = "available"
	StateApplying  State = "applying"
	StateApplied   State = "applied"
	StateError     State = "error"
)

// Service checks GitHub releases and replaces the running binary.
type Service interface {
	// CheckForUpdate looks up the newest release without downloading it.
	CheckForUpdate(ctx context.Context) (*UpdateInfo, error)

	// ApplyUpdate downloads the newest release over the running
	// executable. The new version takes effect on the next start.
	ApplyUpdate(ctx context.Context) (*UpdateInfo, error)

	GetStatus() *Status

	// IsEnabled is false when the executable's directory is not writable.
	IsEnabled() bool
	DisabledReason() string
}

// UpdateInfo describes the newest release relative to this binary.
type UpdateInfo struct {
	CurrentVersion  string
	LatestVersion   string
	ReleaseNotes    string
	ReleaseURL      string
	PublishedAt     time.Time
	UpdateAvailable bool
}

// Status is a snapshot of the updater.
type Status struct {
	State          State
	CurrentVersion string
	TargetVersion  string
	Error          string
	LastChecked    *time.Time
}

// Options configures NewService.
type Options struct {
	Repository string // GitHub slug, e.g. "smazurov/camctl"
	Prerelease bool
}
