package mailer

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/script"
)

const (
	// TaskSendEmail is the asynq task type an external mailer handles
	TaskSendEmail = "email:send"

	defaultQueue    = "raytha:email"
	defaultMaxRetry = 5
	defaultTimeout  = time.Minute
)

type Options struct {
	// URL is the redis address (host:port)
	URL string
	TLS *tls.Config

	Queue    string
	MaxRetry int
	Timeout  time.Duration
}

func (o *Options) setDefaults() {
	if o.Queue == "" {
		o.Queue = defaultQueue
	}
	if o.MaxRetry <= 0 {
		o.MaxRetry = defaultMaxRetry
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
}

// Asynq hands emails to a mailer process via redis.
type Asynq struct {
	opts *Options
	cli  *asynq.Client
	log  *zap.Logger
}

func NewAsynq(opts *Options, log *zap.Logger) *Asynq {
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Asynq{
		opts: opts,
		cli:  asynq.NewClient(asynq.RedisClientOpt{Addr: opts.URL, TLSConfig: opts.TLS}),
		log:  log.Named("mailer"),
	}
}

// Send enqueues the email; delivery is done by whatever serves TaskSendEmail.
func (a *Asynq) Send(ctx context.Context, msg *script.EmailMessage) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}

	info, err := a.cli.EnqueueContext(
		ctx,
		task,
		asynq.Queue(a.opts.Queue),
		asynq.MaxRetry(a.opts.MaxRetry),
		asynq.Timeout(a.opts.Timeout),
	)
	if err != nil {
		return err
	}

	a.log.Debug("email enqueued", zap.String("task_id", info.ID), zap.Strings("to", msg.To))
	return nil
}

func (a *Asynq) Close() error {
	return a.cli.Close()
}

// NewEmailTask builds the task for a message.
func NewEmailTask(msg *script.EmailMessage) (*asynq.Task, error) {
	if msg == nil || len(msg.To) == 0 {
		return nil, fmt.Errorf("%w email has no recipients", errors.ErrInvalidArg)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendEmail, data), nil
}

// ParseEmailTask reads a message back out of a task, for the serving side.
func ParseEmailTask(t *asynq.Task) (*script.EmailMessage, error) {
	if t.Type() != TaskSendEmail {
		return nil, fmt.Errorf("%w task type %s is not %s", errors.ErrInvalidArg, t.Type(), TaskSendEmail)
	}
	msg := &script.EmailMessage{}
	err := json.Unmarshal(t.Payload(), msg)
	if err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrInvalidArg, err)
	}
	return msg, nil
}
