package models

import "time"

// UpdateCheckData describes the newest release relative to this binary.
type UpdateCheckData struct {
	CurrentVersion  string    `json:"current_version" example:"1.0.0" doc:"Running version"`
	LatestVersion   string    `json:"latest_version" example:"1.1.0" doc:"Newest published version"`
	ReleaseNotes    string    `json:"release_notes,omitempty" doc:"Markdown release notes"`
	ReleaseURL      string    `json:"release_url,omitempty" doc:"Release page"`
	PublishedAt     time.Time `json:"published_at,omitzero" doc:"Publication time"`
	UpdateAvailable bool      `json:"update_available" example:"true" doc:"Whether LatestVersion is newer"`
}

type UpdateCheckResponse struct {
	Body UpdateCheckData
}

type UpdateStatusData struct {
	State          string     `json:"state" example:"idle" doc:"idle, checking, available, applying, applied or error"`
	CurrentVersion string     `json:"current_version" example:"1.0.0" doc:"Running version"`
	TargetVersion  string     `json:"target_version,omitempty" example:"1.1.0" doc:"Version found by the last check"`
	Error          string     `json:"error,omitempty" doc:"Last failure"`
	LastChecked    *time.Time `json:"last_checked,omitempty" doc:"When the last check ran"`
}

type UpdateStatusResponse struct {
	Body UpdateStatusData
}

type UpdateApplyResponse struct {
	Body struct {
		Message string `json:"message" example:"Updated to 1.1.0, restart camctl to use it" doc:"Status message"`
	}
}
