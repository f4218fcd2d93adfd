package view

import (
	"fmt"
	"sort"
	"sync"

	fleet "bustracker/internal/fleet/domain"
	"bustracker/internal/shared/logger"
)

// focusZoom — фиксированный зум для операции Focus.
const focusZoom = 16

// boundsPadRatio — пропорциональный отступ при подгонке карты.
const boundsPadRatio = 0.3

// Renderer согласует состояние карты/списка/таблицы с очередным
// snapshot-ом. Набор маркеров — его собственный одноразовый кэш:
// его можно выбросить и перестроить из любого snapshot без потерь.
type Renderer struct {
	mapSink   MapSink
	listSink  ListSink
	tableSink TableSink
	log       *logger.Logger

	mu      sync.Mutex
	markers map[string]Marker
}

func NewRenderer(mapSink MapSink, listSink ListSink, tableSink TableSink, log *logger.Logger) *Renderer {
	return &Renderer{
		mapSink:   mapSink,
		listSink:  listSink,
		tableSink: tableSink,
		log:       log,
		markers:   make(map[string]Marker),
	}
}

// Render приводит все view к состоянию snapshot. Идемпотентен:
// повторный рендер того же snapshot не меняет видимого результата.
func (r *Renderer) Render(snap fleet.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// убираем маркеры исчезнувших автобусов
	for id := range r.markers {
		if _, ok := snap[id]; !ok {
			r.mapSink.RemoveMarker(id)
			delete(r.markers, id)
		}
	}

	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var bounds []LatLng
	cards := make([]BusCard, 0, len(ids))
	rows := make([]AdminRow, 0, len(ids))

	for _, id := range ids {
		rec := snap[id]

		rows = append(rows, adminRow(rec))

		if !rec.HasFix() {
			// позиции нет: с карты убираем, в таблице остается
			if _, ok := r.markers[id]; ok {
				r.mapSink.RemoveMarker(id)
				delete(r.markers, id)
			}
			continue
		}

		lat, lng := *rec.Lat, *rec.Lng
		m := Marker{
			BusID: rec.BusID,
			Lat:   lat,
			Lng:   lng,
			Label: markerLabel(rec),
		}

		if _, ok := r.markers[id]; !ok {
			r.mapSink.AddMarker(m)
		} else {
			// обновление на месте, без пересоздания
			r.mapSink.MoveMarker(m)
		}
		r.markers[id] = m

		bounds = append(bounds, LatLng{Lat: lat, Lng: lng})
		cards = append(cards, busCard(rec))
	}

	r.listSink.ReplaceCards(cards)
	r.tableSink.ReplaceRows(rows)

	if len(bounds) > 0 {
		if err := r.mapSink.FitBounds(boundsOf(bounds).Pad(boundsPadRatio)); err != nil {
			// проглатываем: карта остается на прежнем виде
			r.log.Debug(logger.Entry{
				Action:  "fit_bounds_ignored",
				Message: err.Error(),
			})
		}
	}

	r.flush()
}

// Focus центрирует карту на автобусе и открывает его подпись.
// Без маркера — no-op.
func (r *Renderer) Focus(busID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.markers[busID]
	if !ok {
		return
	}

	r.mapSink.SetView(m.Lat, m.Lng, focusZoom)
	r.mapSink.OpenPopup(busID)
	r.flush()
}

// MarkerCount возвращает число активных маркеров.
func (r *Renderer) MarkerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}

func (r *Renderer) flush() {
	seen := map[any]bool{}
	for _, sink := range []any{r.mapSink, r.listSink, r.tableSink} {
		if seen[sink] {
			continue
		}
		seen[sink] = true
		if f, ok := sink.(Flusher); ok {
			f.Flush()
		}
	}
}

func markerLabel(rec fleet.BusRecord) string {
	return fmt.Sprintf("%s / %s / Route: %s",
		rec.BusID,
		orDefault(rec.Driver, "Unknown"),
		orDefault(rec.Route, "-"),
	)
}

func busCard(rec fleet.BusRecord) BusCard {
	return BusCard{
		BusID:    rec.BusID,
		Driver:   orDefault(rec.Driver, fleet.DriverUnassigned),
		Route:    orDefault(rec.Route, "-"),
		Status:   orDefault(rec.Status, fleet.StatusOffline),
		Position: formatPosition(*rec.Lat, *rec.Lng),
	}
}

func adminRow(rec fleet.BusRecord) AdminRow {
	position := "N/A"
	if rec.HasFix() {
		position = formatPosition(*rec.Lat, *rec.Lng)
	}
	return AdminRow{
		BusID:      rec.BusID,
		Route:      orDefault(rec.Route, "-"),
		Driver:     orDefault(rec.Driver, "-"),
		Position:   position,
		Status:     orDefault(rec.Status, fleet.StatusOffline),
		LastUpdate: formatLastUpdate(rec.LastUpdate),
	}
}

func boundsOf(points []LatLng) Bounds {
	b := Bounds{
		MinLat: points[0].Lat,
		MinLng: points[0].Lng,
		MaxLat: points[0].Lat,
		MaxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}
	return b
}
