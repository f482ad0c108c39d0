package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultAMQPDialTimeout = 10 * time.Second

// QueueSender publishes messages to a durable RabbitMQ queue for the mail
// consumer to deliver out of band. It holds one connection and channel and
// reopens them when the broker drops either.
type QueueSender struct {
	url         string
	queue       string
	dialTimeout time.Duration

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewQueueSender builds a publisher for the named queue. The broker is
// dialed on the first Send.
func NewQueueSender(url, queue string) *QueueSender {
	return &QueueSender{url: url, queue: queue, dialTimeout: defaultAMQPDialTimeout}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel(ctx)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		s.reset()
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Close releases the broker connection.
func (s *QueueSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

// channel returns the open channel, reconnecting first if needed. Callers
// hold s.mu.
func (s *QueueSender) channel(ctx context.Context) (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() && !s.conn.IsClosed() {
		return s.ch, nil
	}
	_ = s.reset()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(s.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      s.dialer(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}

	s.conn, s.ch = conn, ch
	return ch, nil
}

// dialer bounds the TCP dial and the AMQP handshake by ctx and the dial
// timeout, whichever ends first. The library clears the deadline once the
// connection is open.
func (s *QueueSender) dialer(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline := time.Now().Add(s.dialTimeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		dialCtx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()

		var d net.Dialer
		conn, err := d.DialContext(dialCtx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (s *QueueSender) reset() error {
	var err error
	if s.ch != nil {
		err = s.ch.Close()
	}
	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil && !errors.Is(cerr, amqp.ErrClosed) {
			err = cerr
		}
	}
	s.conn, s.ch = nil, nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}
