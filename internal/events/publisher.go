package events

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
}

// Handler returns nil only when the event is fully processed.
type Handler func(ctx context.Context, e Envelope) error

// Dispatcher delivers events to in-process handlers. It is used when no
// broker is configured.
type Dispatcher struct {
	handlers []Handler
}

func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) Publish(ctx context.Context, e Envelope) error {
	for _, h := range d.handlers {
		if err := h(ctx, e); err != nil {
			log.Error().Err(err).Str("event_id", e.EventID).Str("event_type", e.EventType).Msg("events: in-process handler failed")
		}
	}
	return nil
}

type nopPublisher struct{}

// Discard drops every event.
func Discard() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Envelope) error { return nil }

// Claimer records which event ids were already handled.
type Claimer interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string)
}

// Deduplicate skips envelopes whose id was claimed before. A failed handler
// releases its claim so a redelivery is processed again.
func Deduplicate(c Claimer, h Handler) Handler {
	return func(ctx context.Context, e Envelope) error {
		first, err := c.Claim(ctx, e.EventID)
		if err != nil {
			return err
		}
		if !first {
			log.Debug().Str("event_id", e.EventID).Str("event_type", e.EventType).Msg("events: duplicate skipped")
			return nil
		}
		if err := h(ctx, e); err != nil {
			c.Release(ctx, e.EventID)
			return err
		}
		return nil
	}
}
