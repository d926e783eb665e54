package eventbus

import (
	"context"
	"sync"
)

// Subscription is the handle Subscribe returns. Close is idempotent: the
// first call removes the listener from the bus and closes its channel,
// every subsequent call is a no-op that replays the first call's result.
type Subscription struct {
	ID     string
	Tenant string

	bus  *Bus
	once sync.Once
	err  error
}

func (s *Subscription) Close(ctx context.Context) error {
	s.once.Do(func() {
		done := make(chan struct{})
		cmd := closeCmd{tenant: s.Tenant, id: s.ID, done: done}
		select {
		case s.bus.mailbox <- cmd:
		case <-s.bus.stoppedCh:
			return
		case <-ctx.Done():
			s.err = ctx.Err()
			return
		}

		select {
		case <-done:
		case <-ctx.Done():
			s.err = ctx.Err()
		}
	})
	return s.err
}
