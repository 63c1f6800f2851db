package events

import (
	"context"
	"sync"
)

type pendingCtxKey struct{}

// pendingEvents buffers after-commit publications of one unit of work.
type pendingEvents struct {
	mu     sync.Mutex
	events []Event
}

func (p *pendingEvents) add(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *pendingEvents) drain() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	drained := p.events
	p.events = nil
	return drained
}

func pendingFrom(ctx context.Context) (*pendingEvents, bool) {
	p, ok := ctx.Value(pendingCtxKey{}).(*pendingEvents)
	return p, ok
}

// UnitOfWork gates after-commit event delivery behind a transaction managed
// by the caller. Begin installs the pending buffer, Commit hands the buffer
// to the bus once the transaction has durably committed, and Rollback drops
// it without a single handler invocation.
type UnitOfWork struct {
	bus     *Bus
	pending *pendingEvents
	ctx     context.Context
}

// Begin returns a derived context carrying a fresh pending-event buffer.
// After-commit publications made with that context accumulate in the buffer.
func (b *Bus) Begin(ctx context.Context) (context.Context, *UnitOfWork) {
	pending := &pendingEvents{}
	uowCtx := context.WithValue(ctx, pendingCtxKey{}, pending)
	return uowCtx, &UnitOfWork{bus: b, pending: pending, ctx: ctx}
}

// Commit flushes the buffered events to the event pool. Call it only after
// the underlying transaction reported a durable commit. Each event carries
// the ambient state of the originating context onto its handler goroutine.
func (u *UnitOfWork) Commit() {
	for _, e := range u.pending.drain() {
		event := e
		u.bus.pool.Submit(u.ctx, func(taskCtx context.Context) {
			u.bus.dispatch(taskCtx, event)
		})
	}
}

// Rollback discards all buffered events.
func (u *UnitOfWork) Rollback() {
	u.pending.drain()
}
