package domain

import "errors"

var (
	// ErrEmptyBusID возникает при записи без идентификатора
	ErrEmptyBusID = errors.New("bus id must not be empty")

	// ErrBusNotFound возникает, когда автобус не найден
	ErrBusNotFound = errors.New("bus not found")
)
