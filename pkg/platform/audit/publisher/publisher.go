// Package publisher delivers audit events to a store, synchronously by
// default or through a buffered channel when a drop-tolerant async path is
// acceptable. Ledger audit is operational, not compliance: emission failures
// are logged, never propagated into the business operation.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "scanledger/pkg/domain"
	audit "scanledger/pkg/platform/audit"
	"scanledger/pkg/requestcontext"
)

// Publisher emits audit events to its store.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox chan audit.Event
	done  chan struct{}
	once  sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery through a
// buffered channel of the given size. Close drains the buffer.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithLogger sets a logger for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a publisher over the given store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

// Emit records an event. In async mode the event is queued; a full buffer
// falls back to a synchronous write so events are never dropped silently.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Operator == "" {
		event.Operator = requestcontext.Operator(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.inbox == nil {
		return p.append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return p.append(ctx, event)
	}
}

// List returns events recorded for a donor.
func (p *Publisher) List(ctx context.Context, donorID id.DonorID) ([]audit.Event, error) {
	return p.store.ListByDonor(ctx, donorID)
}

// Close drains any queued events and stops the background writer.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		p.append(context.Background(), event)
	}
}

func (p *Publisher) append(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit append failed",
				"action", event.Action,
				"error", err,
			)
		}
		return err
	}
	return nil
}
