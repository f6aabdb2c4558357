package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Producer publishes price update events to a queue on the default exchange.
// Messages are persistent and carry a fresh message id.
type Producer struct {
	ch    Channel
	queue string
	now   func() time.Time
}

func NewProducer(ch Channel, queue string) *Producer {
	return &Producer{
		ch:    ch,
		queue: queue,
		now:   time.Now,
	}
}

func (p *Producer) PublishJSON(ctx context.Context, msg any) error {
	const op = "rabbitmq.PublishJSON"

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("%s: queue %s: %w", op, p.queue, err)
	}

	return nil
}
