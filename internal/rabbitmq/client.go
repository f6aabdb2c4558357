package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client owns the broker connection shared by the events producer and the
// trigger consumer. Both work on the same channel.
type Client struct {
	conn    *amqp.Connection
	Channel *amqp.Channel
}

func New(url string) (*Client, error) {
	const op = "rabbitmq.New"

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: open channel: %w", op, err)
	}

	return &Client{
		conn:    conn,
		Channel: ch,
	}, nil
}

// DeclareQueues makes sure every named durable queue exists. Empty names are
// ignored so optional queues can be passed straight from config.
func (c *Client) DeclareQueues(names ...string) error {
	const op = "rabbitmq.DeclareQueues"

	for _, name := range names {
		if name == "" {
			continue
		}

		if _, err := c.Channel.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("%s: %s: %w", op, name, err)
		}
	}

	return nil
}

func (c *Client) Close() error {
	const op = "rabbitmq.Close"

	if err := c.Channel.Close(); err != nil {
		_ = c.conn.Close()
		return fmt.Errorf("%s: channel: %w", op, err)
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("%s: connection: %w", op, err)
	}

	return nil
}
