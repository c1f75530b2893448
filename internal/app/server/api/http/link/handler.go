package link

import (
	"context"
	"errors"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"

	"clipsync/internal/app/server/api/http/middleware/auth"
	"clipsync/internal/domain/link"
)

// Подбор шестизначного кода за пять минут при таком лимите невозможен
const (
	redeemRate  = rate.Limit(1) // попыток в секунду
	redeemBurst = 5
)

type Handler struct {
	service    link.Servicer
	log        *slog.Logger
	middleware huma.Middlewares

	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
}

func NewHandler(service link.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
		limiters:   make(map[uuid.UUID]*rate.Limiter),
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.redeemOp(), h.redeem)
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	expiresAt, err := h.service.Create(ctx, identity.UserID, input.Body.CodeHash, input.Body.Salt, input.Body.EncryptedKey)
	if err != nil {
		if errors.Is(err, link.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, err
	}

	return &createOutput{
		Body: CreateResponse{ExpiresAt: expiresAt, Status: "Ok"},
	}, nil
}

func (h *Handler) redeem(ctx context.Context, input *redeemInput) (*redeemOutput, error) {
	identity, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	if !h.limiter(identity.UserID).Allow() {
		return nil, huma.Error429TooManyRequests("Too many redeem attempts")
	}

	payload, err := h.service.Redeem(ctx, identity.UserID, input.Body.CodeHash)
	if err != nil {
		if errors.Is(err, link.ErrCodeInvalid) {
			// Единый ответ: неизвестный, просроченный и использованный
			// код неразличимы
			return nil, huma.Error404NotFound("Invalid or expired code")
		}
		return nil, err
	}

	return &redeemOutput{
		Body: RedeemResponse{Salt: payload.Salt, EncryptedKey: payload.EncryptedKey, Status: "Ok"},
	}, nil
}

func (h *Handler) limiter(userID uuid.UUID) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[userID]
	if !ok {
		l = rate.NewLimiter(redeemRate, redeemBurst)
		h.limiters[userID] = l
	}
	return l
}
