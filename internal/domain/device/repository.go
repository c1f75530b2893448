package device

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, userID uuid.UUID, name, kind string) (uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Device, error)
	Delete(ctx context.Context, userID, deviceID uuid.UUID) error
	Touch(ctx context.Context, deviceID uuid.UUID) error
}
