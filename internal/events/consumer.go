package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads envelopes with a worker pool and commits each message only
// after its handler succeeded. A partition always maps to the same worker, so
// offsets within a partition are handled and committed in order.
type Consumer struct {
	r       messageReader
	workers int

	retryBase time.Duration
	retryMax  time.Duration
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return newConsumer(r, workers)
}

func newConsumer(r messageReader, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, retryBase: 200 * time.Millisecond, retryMax: 10 * time.Second}
}

// Run blocks until ctx ends or the reader fails.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	defer func() {
		if err := c.r.Close(); err != nil {
			log.Error().Err(err).Msg("events: failed to close kafka reader")
		}
	}()

	queues := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup

	for i := range queues {
		queues[i] = make(chan kafka.Message, 16)
		wg.Add(1)
		go func(worker int, jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				c.handle(ctx, worker, m, h)
			}
		}(i, queues[i])
	}

	err := c.dispatch(ctx, queues)
	for _, q := range queues {
		close(q)
	}
	wg.Wait()
	return err
}

func (c *Consumer) dispatch(ctx context.Context, queues []chan kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case queues[m.Partition%len(queues)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, worker int, m kafka.Message, h Handler) {
	var e Envelope
	if err := json.Unmarshal(m.Value, &e); err != nil {
		// A message that can never decode is committed so it does not block the partition.
		log.Error().Err(err).Int64("offset", m.Offset).Msg("events: dropping undecodable message")
		c.commit(ctx, m)
		return
	}

	// The partition does not advance past a failed message: retry until it
	// succeeds or the consumer stops, in which case the offset stays uncommitted.
	delay := c.retryBase
	for attempt := 1; ; attempt++ {
		err := h(ctx, e)
		if err == nil {
			break
		}
		log.Error().Err(err).Int("worker", worker).Int("attempt", attempt).
			Str("event_id", e.EventID).Str("event_type", e.EventType).
			Dur("retry_in", delay).Msg("events: handler failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, c.retryMax)
	}
	c.commit(ctx, m)
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Int64("offset", m.Offset).Msg("events: failed to commit message")
	}
}
