// Package notification delivers reservation events to email, live websocket
// sessions and web push, off the request path.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Broadcaster publishes to a named group and reports how many receivers got it.
type Broadcaster interface {
	Publish(group string, payload []byte) int
}

// Options configures a WorkerPool.
type Options struct {
	Workers   int
	QueueSize int
	Group     string
	Policy    Policy
	Location  *time.Location
}

// WorkerPool manages a pool of workers for delivering notifications.
type WorkerPool struct {
	size     int
	jobs     chan Event
	group    string
	policy   Policy
	location *time.Location
	mailer   Mailer
	hub      Broadcaster
	push     *PushChannel
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewWorkerPool creates a new worker pool. hub and push may be nil.
func NewWorkerPool(opts Options, mailer Mailer, hub Broadcaster, push *PushChannel, logger *slog.Logger) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = opts.Workers
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	return &WorkerPool{
		size:     opts.Workers,
		jobs:     make(chan Event, opts.QueueSize),
		group:    opts.Group,
		policy:   opts.Policy,
		location: opts.Location,
		mailer:   mailer,
		hub:      hub,
		push:     push,
		logger:   logger.With("component", "notification"),
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	logger := wp.logger.With("worker", id)
	logger.Debug("worker started")
	for {
		select {
		case e := <-wp.jobs:
			wp.deliver(ctx, logger, e)
		case <-ctx.Done():
			logger.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues e without blocking. A full queue drops the event and
// returns false.
func (wp *WorkerPool) Dispatch(e Event) bool {
	select {
	case wp.jobs <- e:
		return true
	default:
		wp.logger.Warn("notification queue full, dropping event",
			"reservation_id", e.ReservationID, "kind", e.Kind)
		return false
	}
}

// deliver sends e on every channel its policy allows. Channel failures are
// logged and never retried.
func (wp *WorkerPool) deliver(ctx context.Context, logger *slog.Logger, e Event) {
	logger = logger.With("reservation_id", e.ReservationID, "kind", e.Kind, "status", string(e.Status))

	if wp.policy.allowEmail(e) {
		if err := wp.mailer.Send(ctx, ComposeMail(e, wp.location)); err != nil {
			logger.ErrorContext(ctx, "failed to send reservation email", "error", err)
		} else {
			logger.InfoContext(ctx, "reservation email sent")
		}
	}

	if !wp.policy.allowBroadcast(e) {
		return
	}
	payload, err := encodeBroadcast(BroadcastText(e, wp.location))
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode broadcast", "error", err)
		return
	}
	if wp.hub != nil {
		delivered := wp.hub.Publish(wp.group, payload)
		logger.DebugContext(ctx, "broadcast published", "group", wp.group, "receivers", delivered)
	}
	if wp.push != nil {
		sent := wp.push.Send(ctx, logger, payload)
		logger.DebugContext(ctx, "push notifications sent", "sent", sent)
	}
}
