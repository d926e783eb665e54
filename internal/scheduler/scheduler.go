// Package scheduler drives a driver.ResumableTaskStore: it registers new
// tasks and runs the polling worker loop that grabs expired leases, hands
// each one to a caller-supplied Handler with bounded concurrency, and
// deletes it on success. A task a handler fails (or never finishes before
// its lease expires) simply re-surfaces on a later Grab, which is the
// store's at-least-once recovery contract (spec §4.6/§5) — handlers must be
// idempotent.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/hookdeck/dwn-go/internal/logging"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

// Handler processes one grabbed task. Returning an error leaves the task in
// place for a later retry instead of deleting it.
type Handler interface {
	Handle(ctx context.Context, task driver.ManagedTask) error
}

type HandlerFunc func(ctx context.Context, task driver.ManagedTask) error

func (f HandlerFunc) Handle(ctx context.Context, task driver.ManagedTask) error {
	return f(ctx, task)
}

const (
	DefaultPollInterval = 5 * time.Second
	DefaultBatchSize    = 10
	DefaultConcurrency  = 4
)

type options struct {
	pollInterval time.Duration
	batchSize    int
	concurrency  int
	logger       *logging.Logger
}

type Option func(*options)

func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Scheduler owns the polling loop over a ResumableTaskStore.
type Scheduler struct {
	options
	store   driver.ResumableTaskStore
	handler Handler
	tracer  trace.Tracer
}

func New(store driver.ResumableTaskStore, handler Handler, opts ...Option) *Scheduler {
	o := options{
		pollInterval: DefaultPollInterval,
		batchSize:    DefaultBatchSize,
		concurrency:  DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler{
		options: o,
		store:   store,
		handler: handler,
		tracer:  otel.GetTracerProvider().Tracer("github.com/hookdeck/dwn-go/internal/scheduler"),
	}
}

// Register assigns a fresh lease and persists task, per spec §4.6 register.
func (s *Scheduler) Register(ctx context.Context, task []byte, timeout time.Duration) (driver.ManagedTask, error) {
	return s.store.Register(ctx, task, timeout)
}

// Run polls the store on pollInterval until ctx is cancelled, dispatching
// grabbed tasks to the handler with at most concurrency in flight at once.
// Run blocks until every in-flight dispatch has returned before honoring
// cancellation, so a shutdown never abandons a task mid-handling.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	sem := semaphore.NewWeighted(int64(s.concurrency))
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			tasks, err := s.store.Grab(ctx, s.batchSize)
			if err != nil {
				s.logError(ctx, "grab", "", err)
				continue
			}

			for _, task := range tasks {
				task := task
				if err := sem.Acquire(ctx, 1); err != nil {
					wg.Wait()
					return ctx.Err()
				}

				wg.Add(1)
				go func() {
					defer wg.Done()
					defer sem.Release(1)
					s.dispatch(ctx, task)
				}()
			}
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, task driver.ManagedTask) {
	ctx, span := s.tracer.Start(ctx, "Scheduler.Handle")
	defer span.End()

	if err := s.handler.Handle(ctx, task); err != nil {
		span.RecordError(err)
		s.logError(ctx, "handle", task.ID, err)
		return
	}

	if err := s.store.Delete(ctx, task.ID); err != nil {
		span.RecordError(err)
		s.logError(ctx, "delete", task.ID, err)
	}
}

func (s *Scheduler) logError(ctx context.Context, op, taskID string, err error) {
	if s.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if taskID != "" {
		fields = append(fields, zap.String("task_id", taskID))
	}
	s.logger.Ctx(ctx).Error("scheduler error", fields...)
}
