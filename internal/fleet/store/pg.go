package store

import (
	"context"
	"fmt"
	"time"

	"bustracker/internal/fleet/domain"
	"bustracker/internal/shared/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore реализует Store поверх PostgreSQL
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore создает Postgres-хранилище флота
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Put — полная перезапись записи (upsert всех полей)
func (s *PGStore) Put(ctx context.Context, rec domain.BusRecord) error {
	if rec.BusID == "" {
		return domain.ErrEmptyBusID
	}

	query := `
		INSERT INTO buses (bus_id, driver, lat, lng, route, status, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (bus_id) DO UPDATE SET
			driver = EXCLUDED.driver,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			route = EXCLUDED.route,
			status = EXCLUDED.status,
			last_update = EXCLUDED.last_update
	`

	_, err := s.db.Exec(ctx, query,
		rec.BusID,
		rec.Driver,
		rec.Lat,
		rec.Lng,
		rec.Route,
		rec.Status,
		rec.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("upsert bus %s: %w", rec.BusID, err)
	}

	return nil
}

// PatchStatus трогает только status и last_update
func (s *PGStore) PatchStatus(ctx context.Context, busID, status string, lastUpdate int64) error {
	if busID == "" {
		return domain.ErrEmptyBusID
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE buses SET status = $2, last_update = $3 WHERE bus_id = $1
	`, busID, status, lastUpdate)
	if err != nil {
		return fmt.Errorf("patch bus %s: %w", busID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBusNotFound
	}

	return nil
}

// AppendHistory добавляет запись истории с push-идентификатором
func (s *PGStore) AppendHistory(ctx context.Context, busID string, entry domain.HistoryEntry) error {
	if busID == "" {
		return domain.ErrEmptyBusID
	}

	pushID := utils.NewPushID(time.UnixMilli(entry.Timestamp))

	_, err := s.db.Exec(ctx, `
		INSERT INTO bus_history (push_id, bus_id, lat, lng, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, pushID, busID, entry.Lat, entry.Lng, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("append history for %s: %w", busID, err)
	}

	return nil
}

// Snapshot — полное чтение коллекции
func (s *PGStore) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.query(ctx, `
		SELECT bus_id, driver, lat, lng, route, status, last_update FROM buses
	`)
}

// SnapshotByRoute — чтение с фильтром по точному совпадению route
func (s *PGStore) SnapshotByRoute(ctx context.Context, route string) (domain.Snapshot, error) {
	return s.query(ctx, `
		SELECT bus_id, driver, lat, lng, route, status, last_update FROM buses
		WHERE route = $1
	`, route)
}

// Empty — есть ли хотя бы одна запись
func (s *PGStore) Empty(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM buses)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check buses exist: %w", err)
	}
	return !exists, nil
}

func (s *PGStore) query(ctx context.Context, sql string, args ...any) (domain.Snapshot, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query buses: %w", err)
	}
	defer rows.Close()

	snap := domain.Snapshot{}
	for rows.Next() {
		var rec domain.BusRecord
		if err := rows.Scan(
			&rec.BusID,
			&rec.Driver,
			&rec.Lat,
			&rec.Lng,
			&rec.Route,
			&rec.Status,
			&rec.LastUpdate,
		); err != nil {
			return nil, fmt.Errorf("scan bus: %w", err)
		}
		snap[rec.BusID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return snap, nil
}
