package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "refresh_service/internal/lib/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

type HandlerFunc = func(ctx context.Context, body []byte) error

// ErrReject marks handler errors that no redelivery can fix. Such messages
// are dropped instead of requeued.
var ErrReject = errors.New("message rejected")

// Consumer reads refresh requests from a queue. Every message is handed to
// the handler once; a failing handler gets the message requeued unless the
// error wraps ErrReject.
type Consumer struct {
	ch        *amqp.Channel
	log       *slog.Logger
	queueName string
}

func NewConsumer(ch *amqp.Channel, log *slog.Logger, queueName string) *Consumer {
	return &Consumer{
		ch:        ch,
		log:       log,
		queueName: queueName,
	}
}

func (c *Consumer) Consume(
	ctx context.Context,
	handler HandlerFunc,
) error {
	const op = "rabbitmq.Consume"

	msgs, err := c.ch.Consume(
		c.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				settle(ctx, c.log.With(slog.String("op", op)), msg, msg.Body, handler)
			}
		}
	}()

	return nil
}

// Acknowledger is the part of amqp.Delivery the consumer settles messages with.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(ctx context.Context, log *slog.Logger, ack Acknowledger, body []byte, handler HandlerFunc) {
	if err := handler(ctx, body); err != nil {
		requeue := !errors.Is(err, ErrReject)

		log.Error("handler failed", sl.Err(err), slog.Bool("requeue", requeue))

		if err := ack.Nack(false, requeue); err != nil {
			log.Error("nack failed", sl.Err(err))
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		log.Error("ack failed", sl.Err(err))
	}
}
