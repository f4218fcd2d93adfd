package out

import (
	"context"
	"time"
)

// Fix — один сэмпл позиции. Err != nil означает, что источник не смог
// выдать позицию; непрерывный watch при этом продолжает жить.
type Fix struct {
	Lat float64
	Lng float64
	At  time.Time
	Err error
}

// FixOptions — настройки запроса позиции, аналог options браузерного
// геолокационного API.
type FixOptions struct {
	// HighAccuracy — предпочитать точный (медленный) источник.
	HighAccuracy bool

	// MaxAge — допустимый возраст кэшированного fix. 0 — только свежий.
	MaxAge time.Duration

	// Timeout — ограничение ожидания первого/следующего fix. 0 — без лимита.
	Timeout time.Duration
}

// LocationSource — позиционирование устройства: одноразовый запрос
// и непрерывный watch. Watch отменяется через ctx, после отмены
// сэмплы детерминированно прекращаются.
type LocationSource interface {
	Current(ctx context.Context, opts FixOptions) (Fix, error)
	Watch(ctx context.Context, opts FixOptions) (<-chan Fix, error)
}
