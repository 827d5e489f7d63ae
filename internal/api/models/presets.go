package models

// PresetState is a stored camera position as the UI sends and receives it.
type PresetState struct {
	Zoom int `json:"zoom" example:"150" doc:"Zoom"`
	Pan  int `json:"pan" example:"0" doc:"Pan"`
	Tilt int `json:"tilt" example:"0" doc:"Tilt"`
}

type PresetSaveRequest struct {
	ID   string `path:"id" example:"A" doc:"Preset identifier"`
	Body PresetState
}

type PresetLoadRequest struct {
	ID string `path:"id" example:"A" doc:"Preset identifier"`
}

type PresetLoadData struct {
	Success bool         `json:"success" example:"true" doc:"Whether the preset exists"`
	Message string       `json:"message,omitempty" example:"Preset not found" doc:"Failure reason"`
	State   *PresetState `json:"state,omitempty" doc:"Stored position"`
}

type PresetLoadResponse struct {
	Body PresetLoadData
}

type PresetListData struct {
	Success bool                   `json:"success" example:"true" doc:"Always true"`
	Presets map[string]PresetState `json:"presets" doc:"All presets keyed by id"`
}

type PresetListResponse struct {
	Body PresetListData
}
