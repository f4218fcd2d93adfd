package view

import (
	"fmt"
	"strconv"
	"time"
)

// LatLng — точка на карте.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds — ограничивающий прямоугольник для fit операции.
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// Pad расширяет прямоугольник на долю его размера в каждую сторону.
// Вырожденный (точечный) прямоугольник остается вырожденным.
func (b Bounds) Pad(ratio float64) Bounds {
	latPad := (b.MaxLat - b.MinLat) * ratio
	lngPad := (b.MaxLng - b.MinLng) * ratio
	return Bounds{
		MinLat: b.MinLat - latPad,
		MinLng: b.MinLng - lngPad,
		MaxLat: b.MaxLat + latPad,
		MaxLng: b.MaxLng + lngPad,
	}
}

// Marker — view-model метки на карте. Живет только внутри рендерера,
// пересоздается из каждого snapshot.
type Marker struct {
	BusID string  `json:"busId"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

// BusCard — карточка в пассажирском списке. Только автобусы с позицией.
type BusCard struct {
	BusID    string `json:"busId"`
	Driver   string `json:"driver"`
	Route    string `json:"route"`
	Status   string `json:"status"`
	Position string `json:"position"` // "12.97000, 77.59000"
}

// Summary — строка вида "BUS001 / Raj / Route: 101 / online".
func (c BusCard) Summary() string {
	return fmt.Sprintf("%s / %s / Route: %s / %s", c.BusID, c.Driver, c.Route, c.Status)
}

// AdminRow — строка админской таблицы. Все автобусы, включая без позиции.
type AdminRow struct {
	BusID      string `json:"busId"`
	Route      string `json:"route"`
	Driver     string `json:"driver"`
	Position   string `json:"position"`   // "12.97000, 77.59000" или "N/A"
	Status     string `json:"status"`     // по умолчанию "offline"
	LastUpdate string `json:"lastUpdate"` // локальное время или "-"
}

func fixed5(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func formatPosition(lat, lng float64) string {
	return fixed5(lat) + ", " + fixed5(lng)
}

func formatLastUpdate(millis int64) string {
	if millis == 0 {
		return "-"
	}
	return time.UnixMilli(millis).Format("15:04:05")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
