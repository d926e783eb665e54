// Package eventbus is the in-process, per-tenant fan-out bus described in
// spec §4.5: a single goroutine owns the listener map and processes a
// mailbox of emit/subscribe/close/shutdown commands in order, the same
// shape as the actor the store's event log was originally built around.
// Driving it through a mailbox instead of a mutex means a slow subscriber
// during one emit can never interleave with, or corrupt, a concurrent
// subscribe/close.
package eventbus

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/logging"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/store/driver"
)

// Event is the payload fanned out to listeners on emit: the persisted
// message plus, for a Records·Delete or Records·Query reply, the original
// Records·Write it descends from.
type Event struct {
	Tenant       string
	Message      message.Message
	InitialWrite *message.Message
	Indexes      driver.Indexes
}

// DefaultListenerBuffer is the channel capacity Subscribe uses when the
// caller doesn't request a specific one.
const DefaultListenerBuffer = 16

type listenerKey struct {
	tenant string
	id     string
}

type emitCmd struct {
	ctx    context.Context
	tenant string
	evt    Event
	done   chan<- error
}

type subscribeCmd struct {
	tenant, id string
	listener   chan Event
	reply      chan<- struct{}
}

type closeCmd struct {
	tenant, id string
	done       chan<- struct{}
}

type shutdownCmd struct {
	done chan<- struct{}
}

// Bus is the actor handle; the zero value is not usable, construct with New.
type Bus struct {
	logger *logging.Logger
	tracer trace.Tracer

	mailbox   chan any
	stoppedCh chan struct{}
}

type Option func(*Bus)

func WithLogger(logger *logging.Logger) Option {
	return func(b *Bus) { b.logger = logger }
}

// New constructs a Bus. Open must be called before Emit/Subscribe.
func New(opts ...Option) *Bus {
	b := &Bus{
		tracer: otel.GetTracerProvider().Tracer("github.com/hookdeck/dwn-go/internal/eventbus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open starts the owning goroutine. Calling Open twice on the same Bus
// replaces its mailbox and leaks the previous goroutine; callers should
// treat a Bus as single-open.
func (b *Bus) Open(ctx context.Context) error {
	b.mailbox = make(chan any, 64)
	b.stoppedCh = make(chan struct{})
	go b.run()
	return nil
}

// Close shuts the bus down: it clears every listener, closes each one's
// channel so ranging subscribers observe completion, and stops the owning
// goroutine. Close is idempotent.
func (b *Bus) Close(ctx context.Context) error {
	select {
	case <-b.stoppedCh:
		return nil
	default:
	}

	done := make(chan struct{})
	select {
	case b.mailbox <- shutdownCmd{done: done}:
	case <-b.stoppedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Emit delivers evt to every listener subscribed to evt.Tenant. Delivery to
// each listener is awaited concurrently with the others; a single slow
// listener delays Emit's return but never drops the event for anyone else.
func (b *Bus) Emit(ctx context.Context, evt Event) error {
	if b.mailbox == nil {
		return dwnerrors.ErrNotInitialized
	}

	ctx, span := b.tracer.Start(ctx, "EventBus.Emit")
	defer span.End()

	done := make(chan error, 1)
	cmd := emitCmd{ctx: ctx, tenant: evt.Tenant, evt: evt, done: done}
	select {
	case b.mailbox <- cmd:
	case <-b.stoppedCh:
		return dwnerrors.ErrNotInitialized
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		if err != nil {
			span.RecordError(err)
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers a listener keyed by (tenant, id) and returns a
// Subscription handle plus the channel events will be delivered on. buffer
// sizes the channel; a non-positive value falls back to
// DefaultListenerBuffer.
func (b *Bus) Subscribe(ctx context.Context, tenant, id string, buffer int) (*Subscription, <-chan Event, error) {
	if b.mailbox == nil {
		return nil, nil, dwnerrors.ErrNotInitialized
	}
	if buffer <= 0 {
		buffer = DefaultListenerBuffer
	}

	ch := make(chan Event, buffer)
	reply := make(chan struct{})
	cmd := subscribeCmd{tenant: tenant, id: id, listener: ch, reply: reply}
	select {
	case b.mailbox <- cmd:
	case <-b.stoppedCh:
		return nil, nil, dwnerrors.ErrNotInitialized
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	select {
	case <-reply:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	return &Subscription{ID: id, Tenant: tenant, bus: b}, ch, nil
}

func (b *Bus) run() {
	defer close(b.stoppedCh)

	listeners := make(map[listenerKey]chan Event)
	for raw := range b.mailbox {
		switch cmd := raw.(type) {
		case emitCmd:
			b.dispatchEmit(listeners, cmd)
		case subscribeCmd:
			listeners[listenerKey{cmd.tenant, cmd.id}] = cmd.listener
			close(cmd.reply)
		case closeCmd:
			key := listenerKey{cmd.tenant, cmd.id}
			if ch, ok := listeners[key]; ok {
				delete(listeners, key)
				close(ch)
			}
			close(cmd.done)
		case shutdownCmd:
			for key, ch := range listeners {
				delete(listeners, key)
				close(ch)
			}
			close(cmd.done)
			return
		}
	}
}

// dispatchEmit fans evt out to every listener whose tenant matches and waits
// for all of them before returning, so the mailbox doesn't advance to the
// next command (in particular, another emit for the same tenant) until this
// one's deliveries are settled. A listener that can't take the event before
// cmd.ctx is done is logged and skipped; it never fails the other listeners'
// deliveries or the Emit call itself.
func (b *Bus) dispatchEmit(listeners map[listenerKey]chan Event, cmd emitCmd) {
	var wg sync.WaitGroup
	for key, ch := range listeners {
		if key.tenant != cmd.tenant {
			continue
		}
		key, ch := key, ch
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case ch <- cmd.evt:
			case <-cmd.ctx.Done():
				b.logDeliveryFailure(cmd.ctx, key, cmd.ctx.Err())
			}
		}()
	}
	wg.Wait()
	cmd.done <- nil
}

// logDeliveryFailure records a listener that didn't take its event in time.
// It's a no-op when no logger was configured with WithLogger.
func (b *Bus) logDeliveryFailure(ctx context.Context, key listenerKey, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Ctx(ctx).Error("eventbus: delivery to listener failed",
		zap.String("tenant", key.tenant),
		zap.String("listener_id", key.id),
		zap.Error(err),
	)
}
