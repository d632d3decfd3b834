package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/geobee/geobee/internal/models"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Publisher отправляет события избранного в exchange.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	closers  []io.Closer
	exchange string
}

// NewPublisher создаёт издателя поверх готового канала.
func NewPublisher(ch Channel, exchange string, closers ...io.Closer) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, closers: closers}
}

// Dial подключается к брокеру, объявляет exchange и возвращает издателя.
func Dial(ctx context.Context, url, exchange string, retries int, delay time.Duration) (*Publisher, error) {
	const op = "rabbitmq.Dial"

	conn, err := Connect(ctx, url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := SetupChannel(conn, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewPublisher(ch, exchange, ch, conn), nil
}

// Publish отправляет событие с routing key, равным его типу.
func (p *Publisher) Publish(ctx context.Context, event models.FavoriteEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rabbitmq.Publish: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublishMessage(p.ch, p.exchange, event.Type, event)
}

// Close закрывает канал и соединение.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// NopPublisher используется, когда брокер не настроен.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.FavoriteEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
