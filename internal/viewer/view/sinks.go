package view

// Приемники рендеринга. Для рендерера это непрозрачные потребители:
// браузерная карта за WebSocket, DOM контейнеры списка и таблицы,
// в тестах — фейки.

// MapSink — операции над картой.
type MapSink interface {
	AddMarker(m Marker)
	MoveMarker(m Marker)
	RemoveMarker(busID string)

	// FitBounds подгоняет видимую область под прямоугольник.
	// Ошибка означает, что карта оставила прежний вид.
	FitBounds(b Bounds) error

	// SetView центрирует карту на точке с заданным зумом.
	SetView(lat, lng float64, zoom int)

	// OpenPopup открывает подпись метки.
	OpenPopup(busID string)
}

// ListSink — пассажирский список; всегда полная замена содержимого.
type ListSink interface {
	ReplaceCards(cards []BusCard)
}

// TableSink — админская таблица; всегда полная замена содержимого.
type TableSink interface {
	ReplaceRows(rows []AdminRow)
}

// Flusher опционально реализуется sink-ом, который буферизует операции
// и отдает их потребителю одним сообщением в конце рендера.
type Flusher interface {
	Flush()
}
