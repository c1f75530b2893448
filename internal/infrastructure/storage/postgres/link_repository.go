package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/link"
)

type LinkRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewLinkRepository(db *Storage, log *slog.Logger) *LinkRepository {
	return &LinkRepository{
		db:  db,
		log: log,
	}
}

func (r *LinkRepository) Create(ctx context.Context, session link.Session) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO link_sessions (code_hash, user_id, salt, encrypted_key, created_at, expires_at, consumed)
         VALUES ($1, $2, $3, $4, $5, $6, FALSE)`,
		session.CodeHash, session.UserID.String(), session.Salt,
		session.EncryptedKey, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert link session: %w", err)
	}
	return nil
}

// Consume — единственный способ прочитать сессию: атомарный UPDATE
// исключает выдачу одного кода двум устройствам
func (r *LinkRepository) Consume(ctx context.Context, userID uuid.UUID, codeHash string) (link.Payload, error) {
	var payload link.Payload
	err := r.db.Pool().QueryRow(ctx,
		`UPDATE link_sessions SET consumed = TRUE
         WHERE user_id = $1 AND code_hash = $2 AND NOT consumed AND expires_at > NOW()
         RETURNING salt, encrypted_key`,
		userID.String(), codeHash).Scan(&payload.Salt, &payload.EncryptedKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return link.Payload{}, link.ErrCodeInvalid
		}
		return link.Payload{}, fmt.Errorf("consume link session: %w", err)
	}
	return payload, nil
}

func (r *LinkRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.Pool().Exec(ctx,
		`DELETE FROM link_sessions WHERE expires_at <= NOW() OR consumed`)
	if err != nil {
		return fmt.Errorf("delete expired link sessions: %w", err)
	}
	return nil
}
