package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/events"
)

type memoryClaimer struct {
	seen     map[string]bool
	released []string
	err      error
}

func (c *memoryClaimer) Claim(_ context.Context, id string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.seen[id] {
		return false, nil
	}
	c.seen[id] = true
	return true, nil
}

func (c *memoryClaimer) Release(_ context.Context, id string) {
	delete(c.seen, id)
	c.released = append(c.released, id)
}

func TestDeduplicate(t *testing.T) {
	claimer := &memoryClaimer{seen: map[string]bool{}}
	calls := 0
	failNext := false
	h := events.Deduplicate(claimer, func(context.Context, events.Envelope) error {
		calls++
		if failNext {
			failNext = false
			return errors.New("db down")
		}
		return nil
	})

	e := events.Envelope{EventID: "evt-1", EventType: events.OrderCreated}

	require.NoError(t, h(context.Background(), e))
	require.NoError(t, h(context.Background(), e))
	assert.Equal(t, 1, calls, "redelivery must be skipped")

	failed := events.Envelope{EventID: "evt-2", EventType: events.OrderCreated}
	failNext = true
	require.Error(t, h(context.Background(), failed))
	assert.Equal(t, []string{"evt-2"}, claimer.released)

	require.NoError(t, h(context.Background(), failed))
	assert.Equal(t, 3, calls, "a failed event is retried on redelivery")
}

func TestDeduplicate_ClaimError(t *testing.T) {
	claimer := &memoryClaimer{seen: map[string]bool{}, err: errors.New("redis unavailable")}
	h := events.Deduplicate(claimer, func(context.Context, events.Envelope) error {
		t.Fatal("handler must not run when the claim fails")
		return nil
	})

	assert.Error(t, h(context.Background(), events.Envelope{EventID: "evt-1"}))
}
