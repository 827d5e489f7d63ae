package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-01T00:00:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"1234" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// ResultData is the {success, message} envelope the browser UI expects
// from every camera and preset endpoint.
type ResultData struct {
	Success bool   `json:"success" example:"true" doc:"Whether the operation succeeded"`
	Message string `json:"message,omitempty" example:"Invalid property" doc:"Failure reason or informational message"`
}

type ResultResponse struct {
	Body ResultData
}

// Failure builds a success=false response.
func Failure(message string) *ResultResponse {
	return &ResultResponse{Body: ResultData{Success: false, Message: message}}
}

// Success builds a success=true response.
func Success(message string) *ResultResponse {
	return &ResultResponse{Body: ResultData{Success: true, Message: message}}
}
