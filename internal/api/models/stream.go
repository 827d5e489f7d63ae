package models

import "github.com/smazurov/camctl/internal/stream"

// StreamRequest selects the capture mode. Zero values fall back to the
// defaults.
type StreamRequest struct {
	Width  int `query:"w" default:"1920" minimum:"1" example:"1920" doc:"Frame width"`
	Height int `query:"h" default:"1080" minimum:"1" example:"1080" doc:"Frame height"`
	FPS    int `query:"fps" default:"60" minimum:"1" example:"60" doc:"Frame rate"`
}

type StreamStatusResponse struct {
	Body stream.Status
}

// Snapshot models
type SnapshotRequest struct {
	Width int `query:"w" minimum:"0" example:"640" doc:"Scale to this width, keeping aspect ratio; 0 keeps the source size"`
}

type SnapshotResponse struct {
	ContentType  string `header:"Content-Type"`
	CacheControl string `header:"Cache-Control"`
	Body         []byte
}

type SnapshotSaveData struct {
	Success bool   `json:"success" example:"true" doc:"Whether the snapshot was written"`
	Message string `json:"message,omitempty" doc:"Failure reason"`
	Path    string `json:"path,omitempty" example:"/home/user/Pictures/snapshot_20260101_120000.png" doc:"Written file"`
}

type SnapshotSaveResponse struct {
	Body SnapshotSaveData
}

type OpenFolderData struct {
	Success bool   `json:"success" example:"true" doc:"Whether the file manager was launched"`
	Folder  string `json:"folder,omitempty" example:"/home/user/Pictures" doc:"Folder that was opened"`
	Error   string `json:"error,omitempty" doc:"Failure reason"`
}

type OpenFolderResponse struct {
	Body OpenFolderData
}
