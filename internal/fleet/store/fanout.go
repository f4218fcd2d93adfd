package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bustracker/internal/fleet/domain"
	"bustracker/internal/shared/logger"
	"bustracker/internal/shared/mq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// changeEvent — уведомление об изменении коллекции.
// Подписчик по нему перечитывает полный snapshot, сам payload
// носит только диагностическую нагрузку.
type changeEvent struct {
	Op        string `json:"op"` // put | patch | history
	BusID     string `json:"busId"`
	Timestamp string `json:"timestamp"`
}

// Fleet оборачивает Store и рассылает push-уведомления: после каждой
// успешной записи публикуется событие в fleet_fanout. Ошибка публикации
// не валит запись — событие просто теряется, подписчик догонит на
// следующем изменении.
type Fleet struct {
	inner Store
	bus   *mq.RabbitMQ
	log   *logger.Logger
}

// NewFleet создает Fleet Store с уведомлениями поверх заданного Store
func NewFleet(inner Store, bus *mq.RabbitMQ, log *logger.Logger) *Fleet {
	return &Fleet{inner: inner, bus: bus, log: log}
}

func (f *Fleet) Put(ctx context.Context, rec domain.BusRecord) error {
	if err := f.inner.Put(ctx, rec); err != nil {
		return err
	}
	f.notify(ctx, "put", rec.BusID)
	return nil
}

func (f *Fleet) PatchStatus(ctx context.Context, busID, status string, lastUpdate int64) error {
	if err := f.inner.PatchStatus(ctx, busID, status, lastUpdate); err != nil {
		return err
	}
	f.notify(ctx, "patch", busID)
	return nil
}

func (f *Fleet) AppendHistory(ctx context.Context, busID string, entry domain.HistoryEntry) error {
	if err := f.inner.AppendHistory(ctx, busID, entry); err != nil {
		return err
	}
	// история не влияет на рендеринг, подписчиков не будим
	return nil
}

func (f *Fleet) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return f.inner.Snapshot(ctx)
}

func (f *Fleet) SnapshotByRoute(ctx context.Context, route string) (domain.Snapshot, error) {
	return f.inner.SnapshotByRoute(ctx, route)
}

func (f *Fleet) Empty(ctx context.Context) (bool, error) {
	return f.inner.Empty(ctx)
}

func (f *Fleet) notify(ctx context.Context, op, busID string) {
	event := changeEvent{
		Op:        op,
		BusID:     busID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(event)
	if err != nil {
		f.log.Error(logger.Entry{
			Action:  "fleet_event_marshal_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   busID,
		})
		return
	}

	if err := f.bus.Publish(ctx, mq.FleetFanoutExchange, "", body); err != nil {
		f.log.Error(logger.Entry{
			Action:  "fleet_event_publish_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			BusID:   busID,
		})
	}
}

// Watch подписывается на fleet_fanout: объявляет auto-delete очередь,
// на каждое событие перечитывает полный snapshot и доставляет его.
// Доставляется всегда последний snapshot: если получатель не успевает,
// устаревший срез вытесняется свежим. Первый snapshot приходит сразу
// после подписки, до какого-либо события.
func (f *Fleet) Watch(ctx context.Context) (<-chan domain.Snapshot, error) {
	ch := f.bus.Channel()
	if ch == nil {
		return nil, fmt.Errorf("rabbitmq channel not available")
	}

	queue, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("declare watch queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "", mq.FleetFanoutExchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind watch queue: %w", err)
	}

	out := make(chan domain.Snapshot, 1)

	deliver := func() {
		snap, err := f.inner.Snapshot(ctx)
		if err != nil {
			f.log.Error(logger.Entry{
				Action:  "fleet_snapshot_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
			return
		}
		// вытесняем непрочитанный срез: авторитетен всегда последний
		select {
		case out <- snap:
		default:
			select {
			case <-out:
			default:
			}
			out <- snap
		}
	}

	deliver()

	err = f.bus.Consume(ctx, queue.Name, "", func(msg amqp.Delivery) {
		_ = msg.Ack(false)
		deliver()
	})
	if err != nil {
		return nil, fmt.Errorf("consume watch queue: %w", err)
	}

	f.log.Info(logger.Entry{
		Action:  "fleet_watch_started",
		Message: fmt.Sprintf("subscribed to %s (queue: %s)", mq.FleetFanoutExchange, queue.Name),
	})

	return out, nil
}
