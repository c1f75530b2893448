package sync

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/app/server/relay"
	"clipsync/internal/domain/syncdata"
)

// Handler обслуживает REST-доступ к слотам и истории. Чтение идет напрямую
// в сервис данных, мутации — через релей, который после записи рассылает
// изменение остальным устройствам.
type Handler struct {
	data       syncdata.Servicer
	relay      relay.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(data syncdata.Servicer, relay relay.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		data:       data,
		relay:      relay,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listSlotsOp(), h.listSlots)
	huma.Register(api, h.updateSlotOp(), h.updateSlot)
	huma.Register(api, h.listHistoryOp(), h.listHistory)
	huma.Register(api, h.pushHistoryOp(), h.pushHistory)
	huma.Register(api, h.deleteHistoryOp(), h.deleteHistory)
}

func (h *Handler) listSlots(ctx context.Context, _ *struct{}) (*listSlotsOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	slots, err := h.data.ListSlots(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	return &listSlotsOutput{
		Body: SlotsResponse{Slots: slots, Status: "Ok"},
	}, nil
}

func (h *Handler) updateSlot(ctx context.Context, input *updateSlotInput) (*updateSlotOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	// Мутация должна быть подписана устройством, иначе рассылка
	// не сможет исключить автора
	if !identity.HasDevice() {
		return nil, huma.Error403Forbidden("Device token required")
	}

	slot, err := h.relay.UpdateSlot(ctx, identity.UserID, identity.DeviceID, input.Number, input.Body.EncryptedBlob, input.Body.Timestamp)
	if err != nil {
		switch {
		case errors.Is(err, syncdata.ErrSlotOutOfRange),
			errors.Is(err, syncdata.ErrBlobTooLarge),
			errors.Is(err, syncdata.ErrInvalidInput):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			return nil, err
		}
	}

	return &updateSlotOutput{
		Body: SlotResponse{Slot: slot, Status: "Ok"},
	}, nil
}

func (h *Handler) listHistory(ctx context.Context, input *listHistoryInput) (*listHistoryOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	items, err := h.data.ListHistory(ctx, identity.UserID, input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &listHistoryOutput{
		Body: HistoryResponse{Items: items, Status: "Ok"},
	}, nil
}

func (h *Handler) pushHistory(ctx context.Context, input *pushHistoryInput) (*pushHistoryOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if !identity.HasDevice() {
		return nil, huma.Error403Forbidden("Device token required")
	}

	item, inserted, err := h.relay.PushHistory(ctx, identity.UserID, identity.DeviceID, input.Body.ID, input.Body.EncryptedBlob, input.Body.ContentHash)
	if err != nil {
		switch {
		case errors.Is(err, syncdata.ErrBlobTooLarge),
			errors.Is(err, syncdata.ErrInvalidInput):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			return nil, err
		}
	}

	// 201 для новой записи, 200 для дубликата
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}

	return &pushHistoryOutput{
		Status: status,
		Body:   HistoryPushResponse{Item: item, Inserted: inserted, Status: "Ok"},
	}, nil
}

func (h *Handler) deleteHistory(ctx context.Context, input *deleteHistoryInput) (*deleteHistoryOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	if !identity.HasDevice() {
		return nil, huma.Error403Forbidden("Device token required")
	}

	if err := h.relay.DeleteHistory(ctx, identity.UserID, identity.DeviceID, input.ID, input.Timestamp); err != nil {
		if errors.Is(err, syncdata.ErrNotFound) {
			return nil, huma.Error404NotFound("History item not found")
		}
		return nil, err
	}

	return &deleteHistoryOutput{
		Body: StatusResponse{Status: "Ok"},
	}, nil
}
