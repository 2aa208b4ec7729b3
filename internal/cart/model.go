package cart

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/user"
)

var ErrInvalidPrescription = errors.New("invalid lens prescription")

// EyePrescription is one eye of a lens prescription. Unset values are nil.
type EyePrescription struct {
	Sphere   *float64 `json:"sphere,omitempty"`
	Cylinder *float64 `json:"cylinder,omitempty"`
	Axis     *int     `json:"axis,omitempty"`
	Add      *float64 `json:"add,omitempty"`
}

func (e EyePrescription) validate(eye string) error {
	if e.Sphere != nil && (*e.Sphere < -20 || *e.Sphere > 20) {
		return fmt.Errorf("%w: %s sphere must be between -20 and +20", ErrInvalidPrescription, eye)
	}
	if e.Cylinder != nil && (*e.Cylinder < -6 || *e.Cylinder > 6) {
		return fmt.Errorf("%w: %s cylinder must be between -6 and +6", ErrInvalidPrescription, eye)
	}
	if e.Axis != nil && (*e.Axis < 0 || *e.Axis > 180) {
		return fmt.Errorf("%w: %s axis must be between 0 and 180", ErrInvalidPrescription, eye)
	}
	return nil
}

// Prescription is stored as jsonb on cart and order lines.
type Prescription struct {
	RightEye EyePrescription `json:"right_eye"`
	LeftEye  EyePrescription `json:"left_eye"`
	PD       *float64        `json:"pd,omitempty"`
}

func (p *Prescription) Validate() error {
	if p == nil {
		return nil
	}
	if err := p.RightEye.validate("right_eye"); err != nil {
		return err
	}
	if err := p.LeftEye.validate("left_eye"); err != nil {
		return err
	}
	if p.PD != nil && (*p.PD < 40 || *p.PD > 80) {
		return fmt.Errorf("%w: pd must be between 40 and 80", ErrInvalidPrescription)
	}
	return nil
}

type ProductSummary struct {
	ID            uuid.UUID `json:"id"`
	SellerID      uuid.UUID `json:"seller_id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Images        []string  `json:"images"`
	Price         float64   `json:"price"`
	ResellerPrice *float64  `json:"-"`
	StockQuantity int       `json:"stock_quantity"`
	IsActive      bool      `json:"is_active"`
}

type Item struct {
	ID               uuid.UUID      `json:"id"`
	CartID           uuid.UUID      `json:"cart_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	Quantity         int            `json:"quantity"`
	LensType         *string        `json:"lens_type"`
	LensPrescription *Prescription  `json:"lens_prescription"`
	Product          ProductSummary `json:"product"`
	UnitPrice        float64        `json:"unit_price"`
	LineTotal        float64        `json:"line_total"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Price fills UnitPrice and LineTotal for a buyer of the given role.
func (i *Item) Price(role user.Role) {
	i.UnitPrice = i.Product.Price
	if role == user.RoleReseller && i.Product.ResellerPrice != nil && *i.Product.ResellerPrice > 0 {
		i.UnitPrice = *i.Product.ResellerPrice
	}
	i.LineTotal = round2(i.UnitPrice * float64(i.Quantity))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

type Cart struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Items     []Item    `json:"items"`
	Subtotal  float64   `json:"subtotal"`
	ItemCount int       `json:"item_count"`
}

func build(cartID, userID uuid.UUID, items []Item, role user.Role) *Cart {
	c := &Cart{ID: cartID, UserID: userID, Items: items}
	if c.Items == nil {
		c.Items = []Item{}
	}
	for i := range c.Items {
		c.Items[i].Price(role)
		c.Subtotal += c.Items[i].LineTotal
		c.ItemCount += c.Items[i].Quantity
	}
	c.Subtotal = round2(c.Subtotal)
	return c
}
