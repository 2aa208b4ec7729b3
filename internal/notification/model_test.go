package notification_test

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/events"
	"github.com/sarthaksaklani/enakart/internal/notification"
)

func TestForOrderEvent(t *testing.T) {
	p := events.OrderPayload{
		OrderID:     uuid.Must(uuid.NewV4()),
		OrderNumber: "ORD-20250601-1234ABCD",
		UserID:      uuid.Must(uuid.NewV4()),
		Status:      "shipped",
		SellerIDs:   []uuid.UUID{uuid.Must(uuid.NewV4())},
	}

	testCases := []struct {
		eventType string
		mutate    func(*events.OrderPayload)
		wantTitle string
		wantMsg   string
		wantCount int
	}{
		{events.OrderCreated, nil, "Order placed", "Your order ORD-20250601-1234ABCD has been placed successfully.", 2},
		{events.OrderCancelled, func(p *events.OrderPayload) { p.RefundInitiated = true }, "Order cancelled",
			"Your order ORD-20250601-1234ABCD has been cancelled. A refund has been initiated.", 1},
		{events.OrderReturnRequested, nil, "Return requested",
			"We have received your return request for order ORD-20250601-1234ABCD.", 1},
		{events.OrderStatusChanged, nil, "Order status updated", "Your order ORD-20250601-1234ABCD is now shipped.", 1},
	}

	for _, tc := range testCases {
		t.Run(tc.eventType, func(t *testing.T) {
			payload := p
			if tc.mutate != nil {
				tc.mutate(&payload)
			}
			ns := notification.ForOrderEvent(tc.eventType, payload)

			require.Len(t, ns, tc.wantCount)
			assert.Equal(t, tc.wantTitle, ns[0].Title)
			assert.Equal(t, tc.wantMsg, ns[0].Message)
			assert.Equal(t, p.UserID, ns[0].UserID)
			assert.Equal(t, "/orders/"+p.OrderID.String(), ns[0].Link)
		})
	}
}
