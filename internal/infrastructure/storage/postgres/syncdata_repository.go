package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/syncdata"
)

type SyncDataRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewSyncDataRepository(db *Storage, log *slog.Logger) *SyncDataRepository {
	return &SyncDataRepository{
		db:  db,
		log: log,
	}
}

func (r *SyncDataRepository) UpsertSlot(ctx context.Context, slot syncdata.Slot) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO synced_slots (user_id, slot_number, encrypted_blob, ts, updated_by, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (user_id, slot_number)
         DO UPDATE SET encrypted_blob = EXCLUDED.encrypted_blob,
                       ts = EXCLUDED.ts,
                       updated_by = EXCLUDED.updated_by,
                       updated_at = EXCLUDED.updated_at`,
		slot.UserID.String(), slot.SlotNumber, slot.EncryptedBlob,
		slot.Timestamp, slot.UpdatedBy.String(), slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (r *SyncDataRepository) ListSlots(ctx context.Context, userID uuid.UUID) ([]syncdata.Slot, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT user_id, slot_number, encrypted_blob, ts, updated_by, updated_at
         FROM synced_slots WHERE user_id = $1 ORDER BY slot_number`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []syncdata.Slot
	for rows.Next() {
		var (
			s                 syncdata.Slot
			userID, updatedBy string
		)
		if err := rows.Scan(&userID, &s.SlotNumber, &s.EncryptedBlob, &s.Timestamp, &updatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		if s.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if s.UpdatedBy, err = uuid.Parse(updatedBy); err != nil {
			return nil, fmt.Errorf("parse device id: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *SyncDataRepository) InsertHistory(ctx context.Context, item syncdata.HistoryItem) (bool, error) {
	// Дедупликация по (user_id, content_hash): повторная вставка
	// того же текста молча пропускается
	tag, err := r.db.Pool().Exec(ctx,
		`INSERT INTO synced_history (id, user_id, encrypted_blob, content_hash, created_by, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         ON CONFLICT (user_id, content_hash) DO NOTHING`,
		item.ID.String(), item.UserID.String(), item.EncryptedBlob,
		item.ContentHash, item.CreatedBy.String(), item.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert history: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SyncDataRepository) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]syncdata.HistoryItem, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, user_id, encrypted_blob, content_hash, created_by, created_at
         FROM synced_history WHERE user_id = $1
         ORDER BY created_at DESC, id
         LIMIT $2 OFFSET $3`,
		userID.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var items []syncdata.HistoryItem
	for rows.Next() {
		var (
			it                    syncdata.HistoryItem
			id, userID, createdBy string
		)
		if err := rows.Scan(&id, &userID, &it.EncryptedBlob, &it.ContentHash, &createdBy, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history item: %w", err)
		}
		if it.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse item id: %w", err)
		}
		if it.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		if it.CreatedBy, err = uuid.Parse(createdBy); err != nil {
			return nil, fmt.Errorf("parse device id: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *SyncDataRepository) DeleteHistory(ctx context.Context, userID, itemID uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx,
		`DELETE FROM synced_history WHERE id = $1 AND user_id = $2`,
		itemID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return syncdata.ErrNotFound
	}
	return nil
}
