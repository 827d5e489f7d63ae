package models

import "github.com/smazurov/camctl/internal/camera"

// SetControlRequest sets one camera control.
type SetControlRequest struct {
	Body struct {
		Prop string `json:"prop" example:"zoom" doc:"Control name, case-insensitive"`
		Val  int    `json:"val" example:"150" doc:"Value to apply"`
	}
}

type ControlsData struct {
	Success bool           `json:"success" example:"true" doc:"Whether the camera was read"`
	Message string         `json:"message,omitempty" doc:"Failure reason"`
	Raw     string         `json:"raw" doc:"Control listing as printed by the platform tool"`
	Values  map[string]int `json:"values,omitempty" doc:"Current values keyed by control id"`
}

type ControlsResponse struct {
	Body ControlsData
}

type FormatsData struct {
	Success bool                 `json:"success" example:"true" doc:"Whether the camera was read"`
	Message string               `json:"message,omitempty" doc:"Failure reason"`
	Formats []camera.VideoFormat `json:"formats" doc:"Capture modes, largest and fastest first"`
}

type FormatsResponse struct {
	Body FormatsData
}

type LayoutData struct {
	Success bool                    `json:"success" example:"true" doc:"Always true"`
	Layout  []camera.ControlSection `json:"layout" doc:"Slider sections in display order"`
}

type LayoutResponse struct {
	Body LayoutData
}

type DeviceData struct {
	Success bool   `json:"success" example:"true" doc:"Whether the camera was found"`
	Message string `json:"message,omitempty" doc:"Failure reason"`
	Name    string `json:"name" example:"Elgato Facecam" doc:"Configured match name"`
	Device  string `json:"device,omitempty" example:"/dev/video0" doc:"Resolved OS handle"`
	Backend string `json:"backend" example:"v4l2" doc:"ffmpeg capture backend"`
}

type DeviceResponse struct {
	Body DeviceData
}
