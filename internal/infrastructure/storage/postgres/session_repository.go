package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/session"
)

type SessionRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSessionRepository(db *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID, deviceID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	// device_id пуст для пользовательских токенов
	var device *string
	if deviceID != uuid.Nil {
		s := deviceID.String()
		device = &s
	}

	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO sessions (user_id, device_id, token_hash, expires_at)
         VALUES ($1, $2, decode($3, 'hex'), $4)`,
		userID.String(), device, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (session.Identity, error) {
	var (
		userID   string
		deviceID *string
	)
	err := r.db.Pool().QueryRow(ctx,
		`SELECT user_id, device_id FROM sessions
         WHERE token_hash = decode($1, 'hex') AND expires_at > NOW()`,
		tokenHash).Scan(&userID, &deviceID)
	if err != nil {
		return session.Identity{}, session.ErrInvalidSession
	}

	identity := session.Identity{}
	identity.UserID, err = uuid.Parse(userID)
	if err != nil {
		return session.Identity{}, fmt.Errorf("parse user id: %w", err)
	}
	if deviceID != nil {
		identity.DeviceID, err = uuid.Parse(*deviceID)
		if err != nil {
			return session.Identity{}, fmt.Errorf("parse device id: %w", err)
		}
	}
	return identity, nil
}

func (r *SessionRepository) DeleteByDevice(ctx context.Context, deviceID uuid.UUID) error {
	_, err := r.db.Pool().Exec(ctx,
		`DELETE FROM sessions WHERE device_id = $1`, deviceID.String())
	if err != nil {
		return fmt.Errorf("delete device sessions: %w", err)
	}
	return nil
}
