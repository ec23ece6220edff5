// Package notify delivers best-effort notifications off the request path.
// Messages are queued on a buffered channel, sent by a fixed set of workers,
// retried with exponential backoff and dropped once attempts run out.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Message struct {
	Kind       string
	Subject    string
	Body       string
	Recipients []string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

type Config struct {
	Workers     int           `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize   int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`
	MaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS" envDefault:"3"`
	Backoff     time.Duration `env:"NOTIFY_BACKOFF" envDefault:"2s"`
	SendTimeout time.Duration `env:"NOTIFY_SEND_TIMEOUT" envDefault:"10s"`
}

var ErrClosed = errors.New("dispatcher closed")

type job struct {
	ctx context.Context
	msg Message
}

type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	maxAttempts int
	backoff     time.Duration
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan job

	abort     chan struct{}
	abortOnce sync.Once
	wg        sync.WaitGroup
}

// NewDispatcher starts the workers. Call Close to drain and stop them.
func NewDispatcher(sender Sender, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	d := &Dispatcher{
		sender:      sender,
		logger:      logger,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		sendTimeout: cfg.SendTimeout,
		queue:       make(chan job, cfg.QueueSize),
		abort:       make(chan struct{}),
	}
	d.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch queues msg and returns immediately. A full queue drops the
// message. ctx only contributes its values (trace context); its
// cancellation does not reach the send.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if len(msg.Recipients) == 0 {
		d.logger.Warn("notification dropped", "kind", msg.Kind, "reason", "no recipients")
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped", "kind", msg.Kind, "err", ErrClosed)
		return
	}
	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), msg: msg}:
	default:
		d.logger.Warn("notification dropped", "kind", msg.Kind, "reason", "queue full")
	}
}

// Close stops accepting messages and waits for queued ones to finish. When
// ctx expires first, pending retries are abandoned.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		d.abortOnce.Do(func() { close(d.abort) })
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		select {
		case <-d.abort:
			d.logger.Error("notification dropped", "kind", j.msg.Kind, "reason", "shutdown")
			continue
		default:
		}
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	wait := d.backoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(j.ctx, d.sendTimeout)
		err := d.sender.Send(ctx, j.msg)
		cancel()
		if err == nil {
			d.logger.Debug("notification sent", "kind", j.msg.Kind, "attempt", attempt)
			return
		}
		if attempt >= d.maxAttempts {
			d.logger.Error("notification dropped", "kind", j.msg.Kind, "attempts", attempt, "err", err)
			return
		}
		d.logger.Warn("notification send failed; retrying", "kind", j.msg.Kind, "attempt", attempt, "retry_in", wait.String(), "err", err)

		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-d.abort:
			t.Stop()
			d.logger.Error("notification dropped", "kind", j.msg.Kind, "attempts", attempt, "err", err, "reason", "shutdown")
			return
		}
		wait *= 2
	}
}
