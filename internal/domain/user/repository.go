package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (uuid.UUID, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}
