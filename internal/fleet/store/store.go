// Package store реализует Fleet Store: единственный источник истины
// о состоянии флота. Persistence — PostgreSQL, push-уведомления об
// изменениях — fanout exchange в RabbitMQ.
package store

import (
	"context"

	"bustracker/internal/fleet/domain"
)

// Store — операции над коллекцией buses/{busId} и историей
// drivers/{busId}/history. Консистентность: last-write-wins по записи,
// без версий и транзакций между записями.
type Store interface {
	// Put — полная перезапись записи автобуса.
	Put(ctx context.Context, rec domain.BusRecord) error

	// PatchStatus — частичное обновление: только status и lastUpdate.
	PatchStatus(ctx context.Context, busID, status string, lastUpdate int64) error

	// AppendHistory добавляет запись истории. Записи никогда не
	// изменяются и не удаляются.
	AppendHistory(ctx context.Context, busID string, entry domain.HistoryEntry) error

	// Snapshot — одноразовое полное чтение коллекции.
	Snapshot(ctx context.Context) (domain.Snapshot, error)

	// SnapshotByRoute — одноразовое чтение записей с точным совпадением route.
	SnapshotByRoute(ctx context.Context, route string) (domain.Snapshot, error)

	// Empty — проверка существования хотя бы одной записи (для seed).
	Empty(ctx context.Context) (bool, error)
}

// Feed — подписка на изменения коллекции. Каждая доставка — полный
// Snapshot; порядок доставок совпадает с порядком событий backend,
// но порядок между локальной записью и ее эхом не гарантирован.
type Feed interface {
	Watch(ctx context.Context) (<-chan domain.Snapshot, error)
}
