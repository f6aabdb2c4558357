package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"refresh_service/internal/rabbitmq"
)

type Starter interface {
	Start(ctx context.Context) (string, error)
}

type Consumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, body []byte) error) error
}

// Request is the optional payload of a queue trigger message.
type Request struct {
	Source string `json:"source"`
}

// Trigger starts a refresh pass for every message on the trigger queue,
// the queue counterpart of POST /update-products.
type Trigger struct {
	log     *slog.Logger
	starter Starter
}

func New(log *slog.Logger, s Starter) *Trigger {
	return &Trigger{
		log:     log,
		starter: s,
	}
}

func (t *Trigger) Run(ctx context.Context, consumer Consumer) error {
	return consumer.Consume(ctx, t.handleMessage)
}

func (t *Trigger) handleMessage(ctx context.Context, body []byte) error {
	const op = "trigger.handleMessage"

	var req Request

	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("%s: invalid message format: %w: %w", op, rabbitmq.ErrReject, err)
		}
	}

	// Start only fails when the updater is not wired, which no retry fixes
	runID, err := t.starter.Start(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrReject, err)
	}

	t.log.Info("product update started from queue",
		slog.String("op", op),
		slog.String("run_id", runID),
		slog.String("source", req.Source),
	)

	return nil
}
