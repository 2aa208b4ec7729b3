package order

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/cart"
)

type Status string

const (
	StatusPending         Status = "pending"
	StatusConfirmed       Status = "confirmed"
	StatusProcessing      Status = "processing"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
	StatusReturnRequested Status = "return_requested"
)

func (s Status) String() string {
	return string(s)
}

// sellerTransitions lists the moves a seller may make while fulfilling.
var sellerTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
	},
	StatusConfirmed: {
		StatusProcessing: true,
	},
	StatusProcessing: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered:       {},
	StatusCancelled:       {},
	StatusReturnRequested: {},
}

var cancellable = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusProcessing: true,
}

func CanCancel(s Status) bool {
	return cancellable[s]
}

// IsReturnable reports whether o can still be returned at now: it must be
// delivered and no more than window must have passed since delivery.
func IsReturnable(o *Order, now time.Time, window time.Duration) bool {
	if o.Status != StatusDelivered || o.DeliveredAt == nil {
		return false
	}
	return now.Sub(*o.DeliveredAt) <= window
}

type Source string

const (
	SourceCustomer Source = "customer"
	SourceReseller Source = "reseller"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCard   PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentOnline, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"

	RefundPending = "pending"
)

var (
	ErrNotFound                = errors.New("order not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrProductUnavailable      = errors.New("product not found or inactive")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrCouponExhausted         = errors.New("coupon usage limit reached")
	ErrAddressRequired         = errors.New("address_id or shipping_address is required")
	ErrAddressNotFound         = errors.New("address not found")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
	ErrReasonRequired          = errors.New("reason is required")
	ErrNotReturnable           = errors.New("order is not eligible for return")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// StockError names the product that cannot cover the requested quantity.
type StockError struct {
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d, requested: %d", e.ProductName, e.Available, e.Requested)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// StatusError is returned when an action is not allowed in the order's status.
type StatusError struct {
	Action string
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Order cannot be %s in its current status (%s)", e.Action, e.Status)
}

// ShippingAddress is the address snapshot stored with an order.
type ShippingAddress struct {
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country"`
}

type Item struct {
	ID               uuid.UUID          `json:"id"`
	OrderID          uuid.UUID          `json:"order_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	SellerID         uuid.UUID          `json:"seller_id"`
	ProductName      string             `json:"product_name"`
	ProductImage     string             `json:"product_image"`
	Quantity         int                `json:"quantity"`
	UnitPrice        float64            `json:"unit_price"`
	TotalPrice       float64            `json:"total_price"`
	LensType         *string            `json:"lens_type"`
	LensPrescription *cart.Prescription `json:"lens_prescription"`
	CreatedAt        time.Time          `json:"created_at"`
}

type Order struct {
	ID                 uuid.UUID       `json:"id"`
	OrderNumber        string          `json:"order_number"`
	UserID             uuid.UUID       `json:"user_id"`
	Status             Status          `json:"status"`
	OrderSource        Source          `json:"order_source"`
	Subtotal           float64         `json:"subtotal"`
	DiscountAmount     float64         `json:"discount_amount"`
	ShippingAmount     float64         `json:"shipping_amount"`
	TotalAmount        float64         `json:"total_amount"`
	CouponID           *uuid.UUID      `json:"coupon_id"`
	CouponCode         *string         `json:"coupon_code"`
	ShippingAddress    ShippingAddress `json:"shipping_address"`
	PaymentMethod      PaymentMethod   `json:"payment_method"`
	PaymentStatus      string          `json:"payment_status"`
	RefundStatus       *string         `json:"refund_status"`
	CancellationReason *string         `json:"cancellation_reason"`
	CancelledAt        *time.Time      `json:"cancelled_at"`
	DeliveredAt        *time.Time      `json:"delivered_at"`
	ReturnReason       *string         `json:"return_reason"`
	ReturnRequestedAt  *time.Time      `json:"return_requested_at"`
	Notes              string          `json:"notes"`
	Items              []Item          `json:"items"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// SellerIDs returns the distinct sellers with items in o, in item order.
func (o *Order) SellerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(o.Items))
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.SellerID] {
			seen[it.SellerID] = true
			ids = append(ids, it.SellerID)
		}
	}
	return ids
}

// CouponUsage is recorded together with the order that redeemed the coupon.
type CouponUsage struct {
	CouponID       uuid.UUID
	DiscountAmount float64
}

// newOrderNumber returns e.g. ORD-20250601-3FA9C2B1.
func newOrderNumber(now time.Time) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate order number: %w", err)
	}
	return "ORD-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}
