package domain

import "errors"

var (
	// ErrRegisterFieldsMissing возникает, когда не заполнены bus id или маршрут
	ErrRegisterFieldsMissing = errors.New("enter bus id and route")
)
