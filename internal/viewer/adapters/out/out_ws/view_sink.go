// Package out_ws отдает отрендеренное состояние браузерным клиентам.
// ViewSink буферизует операции рендерера и на Flush рассылает полный
// снимок view одним WebSocket сообщением.
package out_ws

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/ws"
	"bustracker/internal/viewer/view"
)

// viewMessage — полное состояние view для браузера.
type viewMessage struct {
	Type     string          `json:"type"` // "view"
	Markers  []view.Marker   `json:"markers"`
	Cards    []view.BusCard  `json:"cards"`
	Rows     []view.AdminRow `json:"rows"`
	Viewport *viewport       `json:"viewport,omitempty"`
}

type viewport struct {
	Bounds *view.Bounds `json:"bounds,omitempty"`
	Center *view.LatLng `json:"center,omitempty"`
	Zoom   int          `json:"zoom,omitempty"`
	Popup  string       `json:"popup,omitempty"`
}

// ViewSink реализует MapSink, ListSink и TableSink поверх ws.Hub.
type ViewSink struct {
	hub *ws.Hub
	log *logger.Logger

	mu       sync.Mutex
	markers  map[string]view.Marker
	cards    []view.BusCard
	rows     []view.AdminRow
	viewport *viewport
	lastSent []byte
}

func NewViewSink(hub *ws.Hub, log *logger.Logger) *ViewSink {
	s := &ViewSink{
		hub:     hub,
		log:     log,
		markers: make(map[string]view.Marker),
	}
	// новый клиент сразу получает последний отправленный view
	hub.SetHello(s.LastMessage)
	return s
}

func (s *ViewSink) AddMarker(m view.Marker) {
	s.mu.Lock()
	s.markers[m.BusID] = m
	s.mu.Unlock()
}

func (s *ViewSink) MoveMarker(m view.Marker) {
	s.mu.Lock()
	s.markers[m.BusID] = m
	s.mu.Unlock()
}

func (s *ViewSink) RemoveMarker(busID string) {
	s.mu.Lock()
	delete(s.markers, busID)
	s.mu.Unlock()
}

func (s *ViewSink) FitBounds(b view.Bounds) error {
	// вырожденный прямоугольник не задает видимую область
	if b.MinLat == b.MaxLat && b.MinLng == b.MaxLng {
		return errors.New("degenerate bounds")
	}
	s.mu.Lock()
	s.viewport = &viewport{Bounds: &b}
	s.mu.Unlock()
	return nil
}

func (s *ViewSink) SetView(lat, lng float64, zoom int) {
	s.mu.Lock()
	s.viewport = &viewport{Center: &view.LatLng{Lat: lat, Lng: lng}, Zoom: zoom}
	s.mu.Unlock()
}

func (s *ViewSink) OpenPopup(busID string) {
	s.mu.Lock()
	if s.viewport == nil {
		s.viewport = &viewport{}
	}
	s.viewport.Popup = busID
	s.mu.Unlock()
}

func (s *ViewSink) ReplaceCards(cards []view.BusCard) {
	s.mu.Lock()
	s.cards = cards
	s.mu.Unlock()
}

func (s *ViewSink) ReplaceRows(rows []view.AdminRow) {
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
}

// Flush сериализует накопленное состояние и рассылает его клиентам.
func (s *ViewSink) Flush() {
	s.mu.Lock()

	markers := make([]view.Marker, 0, len(s.markers))
	for _, m := range s.markers {
		markers = append(markers, m)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].BusID < markers[j].BusID })

	msg := viewMessage{
		Type:     "view",
		Markers:  markers,
		Cards:    s.cards,
		Rows:     s.rows,
		Viewport: s.viewport,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		s.mu.Unlock()
		s.log.Error(logger.Entry{
			Action:  "view_marshal_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return
	}
	s.lastSent = body
	s.mu.Unlock()

	s.hub.Broadcast(body)
}

// LastMessage возвращает последний разосланный view (для hello).
func (s *ViewSink) LastMessage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSent
}
