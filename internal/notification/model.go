package notification

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/events"
)

const (
	TypeOrder  = "order"
	TypeSeller = "seller_order"
	TypeSystem = "system"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

type Inbox struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// ForOrderEvent returns the notifications an order event produces: one for
// the buyer and, for new orders, one for every seller with items in it.
func ForOrderEvent(eventType string, p events.OrderPayload) []Notification {
	link := "/orders/" + p.OrderID.String()

	buyer := Notification{UserID: p.UserID, Type: TypeOrder, Link: link}
	switch eventType {
	case events.OrderCreated:
		buyer.Title = "Order placed"
		buyer.Message = fmt.Sprintf("Your order %s has been placed successfully.", p.OrderNumber)
	case events.OrderCancelled:
		buyer.Title = "Order cancelled"
		buyer.Message = fmt.Sprintf("Your order %s has been cancelled.", p.OrderNumber)
		if p.RefundInitiated {
			buyer.Message += " A refund has been initiated."
		}
	case events.OrderReturnRequested:
		buyer.Title = "Return requested"
		buyer.Message = fmt.Sprintf("We have received your return request for order %s.", p.OrderNumber)
	case events.OrderStatusChanged:
		buyer.Title = "Order status updated"
		buyer.Message = fmt.Sprintf("Your order %s is now %s.", p.OrderNumber, p.Status)
	default:
		return nil
	}

	out := []Notification{buyer}
	if eventType == events.OrderCreated {
		for _, sellerID := range p.SellerIDs {
			out = append(out, Notification{
				UserID:  sellerID,
				Type:    TypeSeller,
				Title:   "New order received",
				Message: fmt.Sprintf("You have received a new order %s.", p.OrderNumber),
				Link:    "/seller/orders/" + p.OrderID.String(),
			})
		}
	}
	return out
}
