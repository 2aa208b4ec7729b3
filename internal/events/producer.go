package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("events: producer closed")

// Producer buffers envelopes and writes them to Kafka from a single
// goroutine. The buffer is flushed when Start's context ends.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	done    chan struct{}
	closing chan struct{}
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.done)
		for {
			select {
			case <-ctx.Done():
				close(p.closing)
				p.drain()
				if err := p.w.Close(); err != nil {
					log.Error().Err(err).Msg("events: failed to close kafka writer")
				}
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		log.Error().Err(err).Str("key", string(m.Key)).Msg("events: failed to write message")
	}
}

// Publish enqueues e. It blocks only while the buffer is full.
func (p *Producer) Publish(ctx context.Context, e Envelope) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: failed to encode envelope: %w", err)
	}
	m := kafka.Message{
		Key:   []byte(e.Key()),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
		},
	}

	select {
	case <-p.closing:
		return ErrProducerClosed
	default:
	}

	select {
	case p.inbox <- m:
		return nil
	case <-p.closing:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitClosed blocks until the buffer is flushed after shutdown.
func (p *Producer) WaitClosed() { <-p.done }
