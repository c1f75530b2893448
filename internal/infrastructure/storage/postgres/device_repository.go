package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"clipsync/internal/domain/device"
)

type DeviceRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewDeviceRepository(db *Storage, log *slog.Logger) *DeviceRepository {
	return &DeviceRepository{
		db:  db,
		log: log,
	}
}

func (r *DeviceRepository) Create(ctx context.Context, userID uuid.UUID, name, kind string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO devices (id, user_id, name, kind) VALUES ($1, $2, $3, $4)`,
		id.String(), userID.String(), name, kind)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert device: %w", err)
	}
	return id, nil
}

func (r *DeviceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]device.Device, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, user_id, name, kind, last_seen, created_at
         FROM devices WHERE user_id = $1 ORDER BY created_at`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var devices []device.Device
	for rows.Next() {
		var (
			d          device.Device
			id, userID string
		)
		if err := rows.Scan(&id, &userID, &d.Name, &d.Kind, &d.LastSeen, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		if d.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse device id: %w", err)
		}
		if d.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (r *DeviceRepository) Delete(ctx context.Context, userID, deviceID uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx,
		`DELETE FROM devices WHERE id = $1 AND user_id = $2`,
		deviceID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete device: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return device.ErrNotFound
	}
	return nil
}

func (r *DeviceRepository) Touch(ctx context.Context, deviceID uuid.UUID) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE devices SET last_seen = NOW() WHERE id = $1`, deviceID.String())
	if err != nil {
		return fmt.Errorf("touch device: %w", err)
	}
	return nil
}
