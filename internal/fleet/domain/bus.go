package domain

import "time"

// Статусы шины. Строки нарочно не enum: хранилище их не проверяет,
// незнакомое значение рендерится как есть.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// DriverUnassigned — имя водителя для записей, созданных админом вручную.
const DriverUnassigned = "Unassigned"

// Координата по умолчанию для зарегистрированных, но еще не делившихся
// позицией автобусов (центр города).
const (
	FallbackLat = 12.9716
	FallbackLng = 77.5946
)

// BusRecord — живое состояние одного автобуса.
// Инвариант: BusID всегда равен ключу записи в хранилище.
// Lat/Lng == nil означает "fix еще не получен"; такие записи
// не попадают на карту, но остаются в таблице.
type BusRecord struct {
	BusID      string   `json:"busId"`
	Driver     string   `json:"driver,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	Route      string   `json:"route,omitempty"`
	Status     string   `json:"status,omitempty"`
	LastUpdate int64    `json:"lastUpdate,omitempty"` // миллисекунды epoch
}

// HasFix сообщает, есть ли у записи валидная позиция.
func (b BusRecord) HasFix() bool {
	return b.Lat != nil && b.Lng != nil
}

// HistoryEntry — одна запись append-only истории перемещений.
// После записи не изменяется и не удаляется.
type HistoryEntry struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Timestamp int64   `json:"timestamp"` // миллисекунды epoch
}

// Snapshot — полный срез коллекции buses на момент доставки.
type Snapshot map[string]BusRecord

// Float64Ptr упрощает сборку записей с координатами.
func Float64Ptr(v float64) *float64 { return &v }

// NowMillis — текущее время в миллисекундах epoch.
func NowMillis() int64 { return time.Now().UnixMilli() }
