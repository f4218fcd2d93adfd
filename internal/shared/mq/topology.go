package mq

import (
	"fmt"

	"bustracker/internal/shared/logger"
)

// FleetFanoutExchange — fanout для уведомлений об изменениях флота.
// Каждый write во Fleet Store публикует сюда событие изменения;
// подписчики (viewer-service) вешают свои auto-delete очереди.
const FleetFanoutExchange = "fleet_fanout"

// SetupTopology создает exchanges, идемпотентно.
func SetupTopology(mq *RabbitMQ, log *logger.Logger) error {
	ch := mq.Channel()
	if ch == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	if err := ch.ExchangeDeclare(
		FleetFanoutExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		return fmt.Errorf("declare %s: %w", FleetFanoutExchange, err)
	}

	log.Info(logger.Entry{
		Action:  "topology_ready",
		Message: "rabbitmq exchanges declared",
	})

	return nil
}
