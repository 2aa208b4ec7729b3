package coupon

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// ErrNotFound covers both unknown and inactive codes.
var ErrNotFound = errors.New("invalid coupon code")

// ValidationError is a rule failure whose message is shown to the buyer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

type Coupon struct {
	ID                uuid.UUID    `json:"id"`
	Code              string       `json:"code"`
	Description       string       `json:"description"`
	DiscountType      DiscountType `json:"discount_type"`
	DiscountValue     float64      `json:"discount_value"`
	MinOrderAmount    float64      `json:"min_order_amount"`
	MaxDiscountAmount *float64     `json:"max_discount_amount"`
	UsageLimit        *int         `json:"usage_limit"`
	UsageCount        int          `json:"usage_count"`
	PerUserLimit      *int         `json:"per_user_limit"`
	ValidFrom         time.Time    `json:"valid_from"`
	ValidUntil        *time.Time   `json:"valid_until"`
	IsActive          bool         `json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
}

// Check applies the redemption rules in order and returns the first failure.
// userUses is how many times the buyer has already redeemed c.
func Check(c *Coupon, amount float64, userUses int, now time.Time) error {
	switch {
	case now.Before(c.ValidFrom):
		return invalid("Coupon is not yet valid")
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return invalid("Coupon has expired")
	case c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit:
		return invalid("Coupon usage limit reached")
	case c.PerUserLimit != nil && userUses >= *c.PerUserLimit:
		return invalid("You have already used this coupon")
	case amount < c.MinOrderAmount:
		return invalid("Minimum order amount of " + strconv.FormatFloat(c.MinOrderAmount, 'f', -1, 64) + " required")
	}
	return nil
}

// Calculate returns the discount c grants on amount and the amount left to pay.
func Calculate(c *Coupon, amount float64) (discount, final float64) {
	switch c.DiscountType {
	case DiscountPercentage:
		discount = amount * c.DiscountValue / 100
		if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
			discount = *c.MaxDiscountAmount
		}
	default:
		discount = c.DiscountValue
	}
	discount = min(discount, amount)
	discount = round2(discount)
	return discount, round2(amount - discount)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Result is the outcome of a successful validation.
type Result struct {
	CouponID       uuid.UUID    `json:"coupon_id"`
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  float64      `json:"discount_value"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalAmount    float64      `json:"final_amount"`
}
