// Package events publishes order lifecycle events to RabbitMQ.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/rabbitmq/amqp091-go"
)

const (
	OrdersExchange        = "orders_topic"
	OrderPlacedRoutingKey = "order.placed"

	publishTimeout = 5 * time.Second
)

// channel is the subset of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends events to the orders topic exchange. It is safe for
// concurrent use; publishes on the shared channel are serialized. A closed
// connection or channel is re-opened on the next publish.
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp091.Connection
	ch     channel
	open   func() (*amqp091.Connection, channel, error)
	logger *slog.Logger
}

// Dial connects to amqpURL, opens a channel and declares the orders
// exchange, retrying the connection a few times.
func Dial(ctx context.Context, amqpURL string, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{
		open: func() (*amqp091.Connection, channel, error) {
			conn, ch, err := openChannel(amqpURL)
			if err != nil {
				return nil, nil, err
			}
			return conn, ch, nil
		},
		logger: logger,
	}

	const maxRetries = 5
	var err error
	for i := 0; i < maxRetries; i++ {
		if err = p.reconnect(); err == nil {
			return p, nil
		}

		if i < maxRetries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			logger.Warn("rabbitmq connection failed, retrying",
				slog.String("error", err.Error()),
				slog.Duration("wait", wait),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", maxRetries, err)
}

func openChannel(amqpURL string) (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(amqpURL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	err = ch.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}

// isClosed reports whether the current connection is gone. Callers hold p.mu.
func (p *Publisher) isClosed() bool {
	return p.ch == nil || (p.conn != nil && p.conn.IsClosed())
}

// reconnect drops the current channel and connection and opens new ones.
// Callers hold p.mu, except Dial which owns p exclusively.
func (p *Publisher) reconnect() error {
	if p.open == nil {
		return amqp091.ErrClosed
	}
	p.closeLocked()

	conn, ch, err := p.open()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// OrderPlacedLine is one line of an order.placed event.
type OrderPlacedLine struct {
	MenuID       string   `json:"menu"`
	ItemID       string   `json:"item"`
	Options      []string `json:"options"`
	Quantity     int64    `json:"quantity"`
	Contribution float64  `json:"contribution"`
}

// OrderPlaced is the body of an order.placed event.
type OrderPlaced struct {
	Event     string            `json:"event"`
	OrderID   string            `json:"order_id"`
	UserID    string            `json:"user_id"`
	Total     float64           `json:"total"`
	Lines     []OrderPlacedLine `json:"lines"`
	CreatedAt string            `json:"created_at"`
}

// NewOrderPlaced builds the event body for an order.
func NewOrderPlaced(o *domain.Order) OrderPlaced {
	lines := make([]OrderPlacedLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderPlacedLine{
			MenuID:       l.MenuID,
			ItemID:       l.ItemID,
			Options:      l.Choices,
			Quantity:     l.Quantity,
			Contribution: l.Contribution.Dollars(),
		}
	}
	return OrderPlaced{
		Event:     OrderPlacedRoutingKey,
		OrderID:   o.OrderID,
		UserID:    o.UserID,
		Total:     o.Total.Dollars(),
		Lines:     lines,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// PublishOrderPlaced publishes a persistent order.placed message.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *domain.Order) error {
	body, err := json.Marshal(NewOrderPlaced(o))
	if err != nil {
		return fmt.Errorf("marshal order.placed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    o.OrderID,
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	err = p.publishLocked(ctx, OrderPlacedRoutingKey, msg)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish order.placed: %w", err)
	}

	p.logger.Debug("event published",
		slog.String("routing_key", OrderPlacedRoutingKey),
		slog.String("order_id", o.OrderID),
		slog.Int("size", len(body)),
	)
	return nil
}

// publishLocked publishes msg, re-opening the connection first when it is
// known to be closed and once more when the publish reports it closed.
func (p *Publisher) publishLocked(ctx context.Context, key string, msg amqp091.Publishing) error {
	if p.isClosed() {
		if err := p.reconnect(); err != nil {
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	err := p.ch.PublishWithContext(ctx, OrdersExchange, key, false, false, msg)
	if !errors.Is(err, amqp091.ErrClosed) {
		return err
	}

	p.logger.Warn("rabbitmq channel closed, reconnecting", slog.String("error", err.Error()))
	if rerr := p.reconnect(); rerr != nil {
		return fmt.Errorf("%w (reconnect: %v)", err, rerr)
	}
	return p.ch.PublishWithContext(ctx, OrdersExchange, key, false, false, msg)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	if p.ch != nil {
		err = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
		p.conn = nil
	}
	return err
}
