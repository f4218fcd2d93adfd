// Package geo реализует LocationSource поверх фидов от устройства:
// водительское устройство постит fix по HTTP, DeviceSource раздает их
// подписчикам с дисциплиной max-age/timeout.
package geo

import (
	"context"
	"sync"
	"time"

	out "bustracker/internal/driver/application/ports/out"
	"bustracker/internal/driver/domain"
	"bustracker/internal/shared/logger"
)

type DeviceSource struct {
	log *logger.Logger
	now func() time.Time

	mu      sync.Mutex
	last    out.Fix
	hasLast bool
	subs    map[int]chan out.Fix
	nextID  int
}

func NewDeviceSource(log *logger.Logger) *DeviceSource {
	return &DeviceSource{
		log:  log,
		now:  time.Now,
		subs: make(map[int]chan out.Fix),
	}
}

// Offer принимает fix от устройства и раздает его подписчикам.
// Медленный подписчик теряет fix, не задерживая остальных.
func (s *DeviceSource) Offer(lat, lng float64, at time.Time) {
	if at.IsZero() {
		at = s.now()
	}
	fix := out.Fix{Lat: lat, Lng: lng, At: at}

	s.mu.Lock()
	s.last = fix
	s.hasLast = true
	for _, ch := range s.subs {
		select {
		case ch <- fix:
		default:
		}
	}
	s.mu.Unlock()
}

// Current — одноразовый запрос позиции. Кэшированный fix не старше
// MaxAge возвращается сразу; иначе ждем свежий fix до Timeout/ctx.
func (s *DeviceSource) Current(ctx context.Context, opts out.FixOptions) (out.Fix, error) {
	s.mu.Lock()
	if s.hasLast && opts.MaxAge > 0 && s.now().Sub(s.last.At) <= opts.MaxAge {
		fix := s.last
		s.mu.Unlock()
		return fix, nil
	}
	s.mu.Unlock()

	ch, id := s.subscribe()
	defer s.unsubscribe(id)

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		t := time.NewTimer(opts.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case <-ctx.Done():
		return out.Fix{}, ctx.Err()
	case <-timeout:
		return out.Fix{}, domain.ErrFixTimeout
	case fix := <-ch:
		return fix, nil
	}
}

// Watch — непрерывный поток сэмплов до отмены ctx. Устаревшие fix
// (старше MaxAge на момент доставки) отбрасываются; пауза дольше
// Timeout дает сэмпл с ошибкой, watch при этом продолжает жить.
func (s *DeviceSource) Watch(ctx context.Context, opts out.FixOptions) (<-chan out.Fix, error) {
	ch, id := s.subscribe()
	outCh := make(chan out.Fix, 8)

	go func() {
		defer s.unsubscribe(id)
		defer close(outCh)

		var timer *time.Timer
		var timeout <-chan time.Time
		if opts.Timeout > 0 {
			timer = time.NewTimer(opts.Timeout)
			defer timer.Stop()
			timeout = timer.C
		}

		reset := func() {
			if timer == nil {
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(opts.Timeout)
		}

		for {
			select {
			case <-ctx.Done():
				return

			case fix := <-ch:
				if opts.MaxAge > 0 && s.now().Sub(fix.At) > opts.MaxAge {
					// fix протух по дороге
					continue
				}
				reset()
				select {
				case outCh <- fix:
				case <-ctx.Done():
					return
				}

			case <-timeout:
				reset()
				select {
				case outCh <- out.Fix{Err: domain.ErrFixTimeout}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return outCh, nil
}

func (s *DeviceSource) subscribe() (chan out.Fix, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan out.Fix, 8)
	s.subs[id] = ch
	return ch, id
}

func (s *DeviceSource) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
