package in

import "context"

// RegisterBusInput — ручная регистрация автобуса админом.
type RegisterBusInput struct {
	BusID string `json:"bus_id" validate:"required"`
	Route string `json:"route" validate:"required"`
}

type RegisterBusOutput struct {
	BusID   string `json:"bus_id"`
	Message string `json:"message"`
}

// RegisterBusUseCase — create-or-replace записи автобуса с дефолтными
// полями: водитель не назначен, позиция — fallback координата, offline.
type RegisterBusUseCase interface {
	Execute(ctx context.Context, input RegisterBusInput) (*RegisterBusOutput, error)
}
