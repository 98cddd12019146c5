package dispatch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	stderrs "errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/structs"
)

const (
	defaultPrefetch = 10
	consumerName    = "raytha-jobs"
)

type AMQPOptions struct {
	URL   string
	Queue string
	TLS   *tls.Config

	// Prefetch is how many unacknowledged events the broker will hand us
	Prefetch int
}

// AMQPSource consumes events published to a durable queue. Events are acknowledged once
// dispatched; failed dispatches are requeued & invalid events are dropped.
type AMQPSource struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	deliveries <-chan amqp.Delivery
	log        *zap.Logger
}

func NewAMQPSource(opts *AMQPOptions, log *zap.Logger) (*AMQPSource, error) {
	if opts.Queue == "" {
		return nil, fmt.Errorf("%w amqp queue is required", errors.ErrInvalidArg)
	}
	if opts.Prefetch <= 0 {
		opts.Prefetch = defaultPrefetch
	}

	var (
		conn *amqp.Connection
		err  error
	)
	if opts.TLS != nil {
		conn, err = amqp.DialTLS(opts.URL, opts.TLS)
	} else {
		conn, err = amqp.Dial(opts.URL)
	}
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = ch.Qos(opts.Prefetch, 0, false)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		opts.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(
		opts.Queue,
		consumerName,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	src := newAMQPSource(deliveries, log)
	src.conn = conn
	src.channel = ch
	return src, nil
}

func newAMQPSource(deliveries <-chan amqp.Delivery, log *zap.Logger) *AMQPSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPSource{deliveries: deliveries, log: log.Named("amqp")}
}

func (a *AMQPSource) Next(ctx context.Context) (*structs.Event, Ack, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case d, ok := <-a.deliveries:
		if !ok {
			return nil, nil, nil
		}
		return a.decode(d)
	}
}

func (a *AMQPSource) decode(d amqp.Delivery) (*structs.Event, Ack, error) {
	evt := &structs.Event{}
	err := json.Unmarshal(d.Body, evt)
	if err != nil {
		rerr := d.Reject(false)
		if rerr != nil {
			a.log.Warn("failed to reject message", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(rerr))
		}
		return nil, nil, fmt.Errorf("%w malformed event in message %s: %v", errors.ErrInvalidArg, d.MessageId, err)
	}

	return evt, func(derr error) {
		var aerr error
		switch {
		case derr == nil:
			aerr = d.Ack(false)
		case stderrs.Is(derr, errors.ErrInvalidArg):
			// redelivering won't help
			aerr = d.Reject(false)
		default:
			aerr = d.Nack(false, true)
		}
		if aerr != nil {
			a.log.Warn("failed to acknowledge message", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(aerr))
		}
	}, nil
}

func (a *AMQPSource) Close() error {
	if a.channel != nil {
		if err := a.channel.Close(); err != nil {
			return err
		}
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
