package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/api/models"
	"github.com/smazurov/camctl/internal/camera"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/metrics"
)

const (
	msgInvalidProperty = "Invalid property"
	msgCameraNotFound  = "Camera not found"
	msgSettingsSaved   = "Settings updated in hardware registers."
)

// failureMessage is the message shown by the UI for a device error.
func failureMessage(err error) string {
	if errors.Is(err, camera.ErrDeviceNotFound) {
		return msgCameraNotFound
	}
	return err.Error()
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// setControl applies one value and reports it on the bus.
func (s *Server) setControl(ctx context.Context, prop camera.Property, value int) error {
	err := s.options.Device.SetProperty(ctx, prop, value)
	metrics.RecordControlSet(prop.String(), err == nil)
	if err != nil {
		s.logger.Warn("Failed to set camera control", "property", prop.String(), "value", value, "error", err)
		return err
	}
	s.eventBus.Publish(events.ControlChangedEvent{
		Property:  prop.String(),
		Value:     value,
		Timestamp: timestamp(),
	})
	return nil
}

func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "set-control",
		Method:      http.MethodPost,
		Path:        "/api/camera/set",
		Summary:     "Set Control",
		Description: "Apply one control value to the camera",
		Tags:        []string{"camera"},
	}, func(ctx context.Context, input *models.SetControlRequest) (*models.ResultResponse, error) {
		prop, err := camera.ParseProperty(input.Body.Prop)
		if err != nil {
			return models.Failure(msgInvalidProperty), nil
		}
		if err := s.setControl(ctx, prop, input.Body.Val); err != nil {
			return models.Failure(failureMessage(err)), nil
		}
		return models.Success(""), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "reset-controls",
		Method:      http.MethodPost,
		Path:        "/api/camera/reset",
		Summary:     "Reset Controls",
		Description: "Restore every control to its hardware default",
		Tags:        []string{"camera"},
	}, func(ctx context.Context, _ *struct{}) (*models.ResultResponse, error) {
		if err := s.options.Device.ResetToDefaults(ctx); err != nil {
			s.logger.Warn("Failed to reset camera controls", "error", err)
			return models.Failure(failureMessage(err)), nil
		}
		return models.Success(""), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "save-controls",
		Method:      http.MethodPost,
		Path:        "/api/camera/save",
		Summary:     "Save Controls",
		Description: "Acknowledge a save. The camera applies values immediately, so nothing is written.",
		Tags:        []string{"camera"},
	}, func(_ context.Context, _ *struct{}) (*models.ResultResponse, error) {
		return models.Success(msgSettingsSaved), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-controls",
		Method:      http.MethodGet,
		Path:        "/api/camera/controls",
		Summary:     "Get Controls",
		Description: "Raw control listing and current values",
		Tags:        []string{"camera"},
	}, func(ctx context.Context, _ *struct{}) (*models.ControlsResponse, error) {
		raw, err := s.options.Device.GetControls(ctx)
		if err != nil {
			return &models.ControlsResponse{Body: models.ControlsData{Message: failureMessage(err)}}, nil
		}
		// Values are best effort; the COM backend cannot read some controls.
		values, err := s.options.Device.GetControlValues(ctx)
		if err != nil {
			s.logger.Debug("Control values unavailable", "error", err)
		}
		return &models.ControlsResponse{Body: models.ControlsData{
			Success: true,
			Raw:     raw,
			Values:  values,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-formats",
		Method:      http.MethodGet,
		Path:        "/api/camera/formats",
		Summary:     "Get Formats",
		Description: "Capture modes offered by the camera",
		Tags:        []string{"camera"},
	}, func(ctx context.Context, _ *struct{}) (*models.FormatsResponse, error) {
		formats, err := s.options.Device.GetSupportedFormats(ctx)
		if err != nil {
			return &models.FormatsResponse{Body: models.FormatsData{
				Message: failureMessage(err),
				Formats: []camera.VideoFormat{},
			}}, nil
		}
		return &models.FormatsResponse{Body: models.FormatsData{Success: true, Formats: formats}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-layout",
		Method:      http.MethodGet,
		Path:        "/api/camera/layout",
		Summary:     "Get Layout",
		Description: "Slider sections with ranges and defaults",
		Tags:        []string{"camera"},
	}, func(_ context.Context, _ *struct{}) (*models.LayoutResponse, error) {
		return &models.LayoutResponse{Body: models.LayoutData{
			Success: true,
			Layout:  s.options.Device.Layout(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-device",
		Method:      http.MethodGet,
		Path:        "/api/camera/device",
		Summary:     "Get Device",
		Description: "Resolve the configured camera",
		Tags:        []string{"camera"},
	}, func(ctx context.Context, _ *struct{}) (*models.DeviceResponse, error) {
		dev := s.options.Device
		data := models.DeviceData{
			Name:    dev.DeviceName(),
			Backend: string(dev.CaptureBackend()),
		}
		handle, err := dev.FindDevice(ctx)
		if err != nil {
			data.Message = failureMessage(err)
		} else {
			data.Success = true
			data.Device = handle
		}
		return &models.DeviceResponse{Body: data}, nil
	})
}
