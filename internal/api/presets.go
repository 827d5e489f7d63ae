package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/api/models"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/presets"
)

const msgPresetNotFound = "Preset not found"

func (s *Server) registerPresetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "save-preset",
		Method:      http.MethodPost,
		Path:        "/api/camera/preset/save/{id}",
		Summary:     "Save Preset",
		Description: "Store a zoom, pan and tilt position under id",
		Tags:        []string{"presets"},
	}, func(_ context.Context, input *models.PresetSaveRequest) (*models.ResultResponse, error) {
		state := presets.State{Zoom: input.Body.Zoom, Pan: input.Body.Pan, Tilt: input.Body.Tilt}
		err := s.options.Presets.Save(input.ID, state)
		metrics.RecordPresetOp("save", err == nil)
		if err != nil {
			s.logger.Warn("Failed to save preset", "id", input.ID, "error", err)
			return models.Failure(err.Error()), nil
		}
		s.eventBus.Publish(events.PresetSavedEvent{
			ID:        input.ID,
			Zoom:      state.Zoom,
			Pan:       state.Pan,
			Tilt:      state.Tilt,
			Timestamp: timestamp(),
		})
		return models.Success(""), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "load-preset",
		Method:      http.MethodGet,
		Path:        "/api/camera/preset/load/{id}",
		Summary:     "Load Preset",
		Description: "Return the stored position for id and move the camera there",
		Tags:        []string{"presets"},
	}, func(ctx context.Context, input *models.PresetLoadRequest) (*models.PresetLoadResponse, error) {
		state, ok := s.options.Presets.Load(input.ID)
		if !ok {
			metrics.RecordPresetOp("load", false)
			return &models.PresetLoadResponse{Body: models.PresetLoadData{Message: msgPresetNotFound}}, nil
		}
		metrics.RecordPresetOp("load", true)

		// The UI still gets the stored values when the camera is unplugged.
		if err := presets.Apply(ctx, s.options.Device, state); err != nil {
			s.logger.Warn("Failed to apply preset", "id", input.ID, "error", err)
		} else {
			for _, step := range state.Steps() {
				prop := step.Property.String()
				metrics.RecordControlSet(prop, true)
				s.eventBus.Publish(events.ControlChangedEvent{Property: prop, Value: step.Value, Timestamp: timestamp()})
			}
		}

		return &models.PresetLoadResponse{Body: models.PresetLoadData{
			Success: true,
			State:   &models.PresetState{Zoom: state.Zoom, Pan: state.Pan, Tilt: state.Tilt},
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-presets",
		Method:      http.MethodGet,
		Path:        "/api/camera/presets",
		Summary:     "List Presets",
		Description: "All stored presets keyed by id",
		Tags:        []string{"presets"},
	}, func(_ context.Context, _ *struct{}) (*models.PresetListResponse, error) {
		all := s.options.Presets.All()
		out := make(map[string]models.PresetState, len(all))
		for id, st := range all {
			out[id] = models.PresetState{Zoom: st.Zoom, Pan: st.Pan, Tilt: st.Tilt}
		}
		return &models.PresetListResponse{Body: models.PresetListData{Success: true, Presets: out}}, nil
	})
}
