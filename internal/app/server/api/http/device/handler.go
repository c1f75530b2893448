package device

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/session"
)

type Handler struct {
	service    device.Servicer
	session    session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service device.Servicer, session session.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		session:    session,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.revokeOp(), h.revoke)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	deviceID, err := h.service.Register(ctx, identity.UserID, input.Body.Name, input.Body.Kind)
	if err != nil {
		if errors.Is(err, device.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	token, err := h.session.CreateForDevice(ctx, identity.UserID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("create device session: %w", err)
	}

	return &registerOutput{
		Body: RegisterResponse{DeviceID: deviceID, Token: token, Status: "Ok"},
	}, nil
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	devices, err := h.service.List(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: ListResponse{Devices: devices, Status: "Ok"},
	}, nil
}

func (h *Handler) revoke(ctx context.Context, input *revokeInput) (*revokeOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if err := h.service.Revoke(ctx, identity.UserID, input.ID); err != nil {
		if errors.Is(err, device.ErrNotFound) {
			return nil, huma.Error404NotFound("Device not found")
		}
		return nil, err
	}

	return &revokeOutput{
		Body: StatusResponse{Status: "Ok"},
	}, nil
}
