package camera

// DefaultLayout is the slider schema shown by the UI.
func DefaultLayout() []ControlSection {
	return []ControlSection{
		{
			Title: "Frame",
			ID:    "frame",
			Controls: []CameraControl{
				{ID: "zoom", Label: "Zoom", Min: 100, Max: 400, Step: 1, DefaultValue: 100, Unit: "%"},
				{ID: "pan", Label: "Pan", Min: -2592000, Max: 2592000, Step: 3600, DefaultValue: 0},
				{ID: "tilt", Label: "Tilt", Min: -1458000, Max: 1458000, Step: 3600, DefaultValue: 0},
			},
		},
		{
			Title: "Picture",
			ID:    "picture",
			Controls: []CameraControl{
				{ID: "contrast", Label: "Contrast", Min: 0, Max: 100, Step: 1, DefaultValue: 80, Unit: "%"},
				{ID: "saturation", Label: "Saturation", Min: 0, Max: 127, Step: 1, DefaultValue: 64, Unit: "%"},
				{ID: "sharpness", Label: "Sharpness", Min: 0, Max: 255, Step: 1, DefaultValue: 128},
			},
		},
		{
			Title: "Exposure",
			ID:    "exposure",
			Controls: []CameraControl{
				{ID: "exposure", Label: "Shutter Speed", Min: 1, Max: 2500, Step: 1, DefaultValue: 156},
				{ID: "gain", Label: "ISO (Gain)", Min: 0, Max: 88, Step: 1, DefaultValue: 0},
				{ID: "white_balance", Label: "White Balance", Min: 2800, Max: 7500, Step: 10, DefaultValue: 5000, Unit: "K"},
				{ID: "brightness", Label: "Brightness", Min: -9, Max: 9, Step: 1, DefaultValue: 0},
			},
		},
	}
}

// FindControl returns the layout entry for id.
func FindControl(layout []ControlSection, id string) (CameraControl, bool) {
	for _, section := range layout {
		for _, c := range section.Controls {
			if c.ID == id {
				return c, true
			}
		}
	}
	return CameraControl{}, false
}
