package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, userID, deviceID uuid.UUID, tokenHash string, expiresAt time.Time) error
	Validate(ctx context.Context, tokenHash string) (Identity, error)
	DeleteByDevice(ctx context.Context, deviceID uuid.UUID) error
}
