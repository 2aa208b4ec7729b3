// Package events carries order lifecycle events between the API and the
// notifier, over Kafka or in process.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

const (
	OrderCreated         = "order.created"
	OrderCancelled       = "order.cancelled"
	OrderReturnRequested = "order.return_requested"
	OrderStatusChanged   = "order.status_changed"
)

const envelopeVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderPayload is shared by every order.* event.
type OrderPayload struct {
	OrderID         uuid.UUID   `json:"order_id"`
	OrderNumber     string      `json:"order_number"`
	UserID          uuid.UUID   `json:"user_id"`
	Status          string      `json:"status"`
	PreviousStatus  string      `json:"previous_status,omitempty"`
	TotalAmount     float64     `json:"total_amount"`
	SellerIDs       []uuid.UUID `json:"seller_ids,omitempty"`
	Reason          string      `json:"reason,omitempty"`
	RefundInitiated bool        `json:"refund_initiated,omitempty"`
}

// NewOrderEvent wraps p in an envelope correlated by the order id.
func NewOrderEvent(eventType, producer string, p OrderPayload) (Envelope, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Envelope{}, fmt.Errorf("events: failed to generate event id: %w", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: failed to encode payload: %w", err)
	}
	return Envelope{
		EventID:       id.String(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: p.OrderID.String(),
		Payload:       raw,
	}, nil
}

// Key is the partition key: events of one order stay ordered.
func (e Envelope) Key() string {
	return e.CorrelationID
}

func UnwrapPayload[T any](e Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(e.Payload, &t); err != nil {
		return t, fmt.Errorf("events: decode %s payload: %w", e.EventType, err)
	}
	return t, nil
}
