package domain

import "errors"

var (
	// ErrAlreadySharing возникает при повторном старте шаринга
	ErrAlreadySharing = errors.New("already sharing")

	// ErrNotSharing возникает при остановке без активного шаринга
	ErrNotSharing = errors.New("not currently sharing")

	// ErrShareFieldsMissing возникает, когда не заполнены имя водителя, bus id или маршрут
	ErrShareFieldsMissing = errors.New("please fill driver name, bus id and route")

	// ErrFixTimeout возникает, когда источник позиции не выдал fix за отведенное время
	ErrFixTimeout = errors.New("timed out waiting for position fix")

	// ErrNoFix возникает, когда одноразовый запрос позиции не дал результата
	ErrNoFix = errors.New("no position fix available")
)
