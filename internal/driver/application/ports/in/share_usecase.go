package in

import "context"

// StartShareInput — обязательные поля сессии шаринга.
type StartShareInput struct {
	DriverName string `json:"driver_name" validate:"required"`
	BusID      string `json:"bus_id" validate:"required"`
	Route      string `json:"route" validate:"required"`
}

type StartShareOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type StopShareOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type LocateOnceOutput struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// DisplayState — локальное состояние дисплея водителя. Обновляется на
// каждом сэмпле и при locate-once; в хранилище не пишется.
type DisplayState struct {
	Sharing    bool   `json:"sharing"`
	Lat        string `json:"lat"`         // 6 знаков после запятой
	Lng        string `json:"lng"`         // 6 знаков после запятой
	LastUpdate string `json:"last_update"` // локальное время
	Alert      string `json:"alert"`
}

// ShareUseCase — публикация позиции водителя.
// Состояния: idle <-> sharing.
type ShareUseCase interface {
	// Start переводит idle -> sharing; отклоняет невалидный ввод
	// и повторный старт.
	Start(ctx context.Context, input StartShareInput) (*StartShareOutput, error)

	// Stop переводит sharing -> idle: отменяет watch и, если задан
	// bus id, помечает запись offline частичным обновлением.
	Stop(ctx context.Context) (*StopShareOutput, error)

	// LocateOnce — одноразовый точный fix, обновляет только дисплей.
	LocateOnce(ctx context.Context) (*LocateOnceOutput, error)

	// Display возвращает текущее состояние дисплея.
	Display() DisplayState
}
