package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer reads one durable queue bound to the exchange.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares queue, binds it to every routing key pattern in keys
// and limits unacknowledged deliveries to prefetch.
func NewConsumer(url, queue string, prefetch int, keys ...string) (*Consumer, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("rabbitmq: queue %s needs at least one binding", queue)
	}

	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		closeAll(conn, ch)
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	for _, key := range keys {
		if err := ch.QueueBind(q.Name, key, ExchangeName, false, nil); err != nil {
			closeAll(conn, ch)
			return nil, fmt.Errorf("rabbitmq bind %s: %w", key, err)
		}
	}
	if prefetch > 0 {
		if err := ch.Qos(prefetch, 0, false); err != nil {
			closeAll(conn, ch)
			return nil, fmt.Errorf("rabbitmq qos: %w", err)
		}
	}

	return &Consumer{conn: conn, channel: ch, queue: q.Name}, nil
}

// Consume starts delivery with manual acknowledgement.
func (c *Consumer) Consume(tag string) (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(c.queue, tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume: %w", err)
	}
	return msgs, nil
}

// Closed receives once if the broker drops the connection.
func (c *Consumer) Closed() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *Consumer) Close() {
	closeAll(c.conn, c.channel)
}
