package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/address"
	"github.com/sarthaksaklani/enakart/internal/cart"
	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/coupon"
	"github.com/sarthaksaklani/enakart/internal/events"
	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/user"
)

const producerName = "storefront"

type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]product.Product, error)
}

type CartStore interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]cart.Item, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type AddressLookup interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*address.Address, error)
}

type CouponValidator interface {
	Validate(ctx context.Context, userID uuid.UUID, code string, amount float64) (*coupon.Result, error)
}

// StockCache is told about products whose stock changed.
type StockCache interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// IdempotencyStore remembers which order a client key created.
type IdempotencyStore interface {
	Lookup(ctx context.Context, owner, key string) (string, error)
	Remember(ctx context.Context, owner, key, resourceID string) error
}

type Dependencies struct {
	Products    ProductLookup
	Cart        CartStore
	Addresses   AddressLookup
	Coupons     CouponValidator
	Publisher   events.Publisher
	StockCache  StockCache
	Idempotency IdempotencyStore
}

type Buyer struct {
	ID   uuid.UUID
	Role user.Role
}

type LineInput struct {
	ProductID        uuid.UUID
	Quantity         int
	LensType         *string
	LensPrescription *cart.Prescription
}

type CreateInput struct {
	// Items defaults to the buyer's cart when empty.
	Items           []LineInput
	AddressID       *uuid.UUID
	ShippingAddress *ShippingAddress
	PaymentMethod   PaymentMethod
	CouponCode      string
	Notes           string
	IdempotencyKey  string
}

type CancelResult struct {
	Order           *Order `json:"order"`
	RefundInitiated bool   `json:"refund_initiated"`
}

type Service interface {
	CreateOrder(ctx context.Context, buyer Buyer, in CreateInput) (*Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason *string) (*CancelResult, error)
	RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, status Status, page pagination.Params) ([]Order, pagination.Meta, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)

	ListSellerOrders(ctx context.Context, sellerID uuid.UUID, status Status, page pagination.Params) ([]Order, pagination.Meta, error)
	UpdateStatusBySeller(ctx context.Context, sellerID, orderID uuid.UUID, status Status) (*Order, error)
}

type service struct {
	repo Repository
	deps Dependencies
	cfg  config.OrderConfig
	now  func() time.Time
}

func NewService(repo Repository, deps Dependencies, cfg config.OrderConfig) Service {
	if deps.Publisher == nil {
		deps.Publisher = events.Discard()
	}
	return &service{repo: repo, deps: deps, cfg: cfg, now: time.Now}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ShippingFor returns the shipping charge for an order subtotal.
func ShippingFor(subtotal float64, cfg config.OrderConfig) float64 {
	if subtotal >= cfg.FreeShippingThreshold {
		return 0
	}
	return cfg.ShippingFee
}

func (s *service) CreateOrder(ctx context.Context, buyer Buyer, in CreateInput) (*Order, error) {
	if existing := s.replay(ctx, buyer.ID, in.IdempotencyKey); existing != nil {
		return existing, nil
	}

	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	lines, fromCart, err := s.resolveLines(ctx, buyer.ID, in.Items)
	if err != nil {
		return nil, err
	}

	shipTo, err := s.resolveAddress(ctx, buyer.ID, in)
	if err != nil {
		return nil, err
	}

	items, err := s.priceLines(ctx, buyer.Role, lines)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:          buyer.ID,
		Status:          StatusPending,
		OrderSource:     SourceCustomer,
		ShippingAddress: *shipTo,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		Notes:           in.Notes,
		Items:           items,
	}
	if buyer.Role == user.RoleReseller {
		o.OrderSource = SourceReseller
	}
	for _, it := range items {
		o.Subtotal += it.TotalPrice
	}
	o.Subtotal = round2(o.Subtotal)

	var usage *CouponUsage
	if code := strings.TrimSpace(in.CouponCode); code != "" {
		res, err := s.deps.Coupons.Validate(ctx, buyer.ID, code, o.Subtotal)
		if err != nil {
			return nil, err
		}
		o.CouponID = &res.CouponID
		o.CouponCode = &res.Code
		o.DiscountAmount = res.DiscountAmount
		usage = &CouponUsage{CouponID: res.CouponID, DiscountAmount: res.DiscountAmount}
	}

	o.ShippingAmount = ShippingFor(o.Subtotal, s.cfg)
	o.TotalAmount = round2(o.Subtotal - o.DiscountAmount + o.ShippingAmount)

	o.OrderNumber, err = newOrderNumber(s.now())
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	if err := s.repo.Create(ctx, o, usage); err != nil {
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrCouponExhausted) {
			log.Warn().Err(err).Stringer("user_id", buyer.ID).Msg("service: order rejected inside transaction")
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", buyer.ID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", o.ID).Str("order_number", o.OrderNumber).Stringer("user_id", buyer.ID).
		Float64("total", o.TotalAmount).Msg("service: order created")

	s.afterCreate(ctx, o, fromCart, in.IdempotencyKey)
	return o, nil
}

// replay returns the order an earlier request with the same key created.
func (s *service) replay(ctx context.Context, userID uuid.UUID, key string) *Order {
	if key == "" || s.deps.Idempotency == nil {
		return nil
	}
	id, err := s.deps.Idempotency.Lookup(ctx, userID.String(), key)
	if err != nil {
		log.Warn().Err(err).Msg("service: idempotency lookup failed")
		return nil
	}
	if id == "" {
		return nil
	}
	orderID, err := uuid.FromString(id)
	if err != nil {
		return nil
	}
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil || o.UserID != userID {
		return nil
	}
	return o
}

func (s *service) afterCreate(ctx context.Context, o *Order, fromCart bool, idemKey string) {
	if fromCart {
		if err := s.deps.Cart.Clear(ctx, o.UserID); err != nil {
			log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to clear cart after order")
		}
	}
	if idemKey != "" && s.deps.Idempotency != nil {
		if err := s.deps.Idempotency.Remember(ctx, o.UserID.String(), idemKey, o.ID.String()); err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("service: failed to store idempotency key")
		}
	}
	s.invalidateStock(ctx, o)
	s.publish(ctx, events.OrderCreated, o, events.OrderPayload{SellerIDs: o.SellerIDs()})
}

func (s *service) resolveLines(ctx context.Context, userID uuid.UUID, in []LineInput) ([]LineInput, bool, error) {
	if len(in) > 0 {
		for _, l := range in {
			if l.Quantity < 1 {
				return nil, false, ErrInvalidQuantity
			}
			if err := l.LensPrescription.Validate(); err != nil {
				return nil, false, err
			}
		}
		return in, false, nil
	}

	cartItems, err := s.deps.Cart.ListItems(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to load cart for order")
		return nil, false, fmt.Errorf("service: failed to load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, false, ErrEmptyOrder
	}

	lines := make([]LineInput, 0, len(cartItems))
	for _, ci := range cartItems {
		lines = append(lines, LineInput{
			ProductID:        ci.ProductID,
			Quantity:         ci.Quantity,
			LensType:         ci.LensType,
			LensPrescription: ci.LensPrescription,
		})
	}
	return lines, true, nil
}

func (s *service) resolveAddress(ctx context.Context, userID uuid.UUID, in CreateInput) (*ShippingAddress, error) {
	if in.AddressID != nil {
		a, err := s.deps.Addresses.Get(ctx, userID, *in.AddressID)
		if err != nil {
			if errors.Is(err, address.ErrNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, fmt.Errorf("service: failed to load address: %w", err)
		}
		return &ShippingAddress{
			FullName:     a.FullName,
			Phone:        a.Phone,
			AddressLine1: a.AddressLine1,
			AddressLine2: a.AddressLine2,
			City:         a.City,
			State:        a.State,
			PostalCode:   a.PostalCode,
			Country:      a.Country,
		}, nil
	}
	if in.ShippingAddress != nil {
		addr := *in.ShippingAddress
		if addr.Country == "" {
			addr.Country = "India"
		}
		return &addr, nil
	}
	return nil, ErrAddressRequired
}

// priceLines loads every product, checks stock for the summed quantity per
// product and prices each line for the buyer's role.
func (s *service) priceLines(ctx context.Context, role user.Role, lines []LineInput) ([]Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	wanted := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if _, ok := wanted[l.ProductID]; !ok {
			ids = append(ids, l.ProductID)
		}
		wanted[l.ProductID] += l.Quantity
	}

	products, err := s.deps.Products.GetByIDs(ctx, ids)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load products for order")
		return nil, fmt.Errorf("service: failed to load products: %w", err)
	}
	byID := make(map[uuid.UUID]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, id := range ids {
		p, ok := byID[id]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, id)
		}
		if p.StockQuantity < wanted[id] {
			return nil, &StockError{ProductName: p.Name, Available: p.StockQuantity, Requested: wanted[id]}
		}
	}

	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		p := byID[l.ProductID]
		unit := p.PriceFor(role)
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		items = append(items, Item{
			ProductID:        p.ID,
			SellerID:         p.SellerID,
			ProductName:      p.Name,
			ProductImage:     image,
			Quantity:         l.Quantity,
			UnitPrice:        unit,
			TotalPrice:       round2(unit * float64(l.Quantity)),
			LensType:         l.LensType,
			LensPrescription: l.LensPrescription,
		})
	}
	return items, nil
}

func (s *service) ownOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	if o.UserID != userID {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason *string) (*CancelResult, error) {
	o, err := s.ownOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanCancel(o.Status) {
		return nil, &StatusError{Action: "cancelled", Status: o.Status}
	}

	refund, err := s.repo.Cancel(ctx, orderID, reason, s.now().UTC())
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to cancel order")
		return nil, fmt.Errorf("service: failed to cancel order: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload cancelled order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Bool("refund_initiated", refund).Msg("service: order cancelled")

	s.invalidateStock(ctx, updated)
	payload := events.OrderPayload{PreviousStatus: o.Status.String(), RefundInitiated: refund}
	if reason != nil {
		payload.Reason = *reason
	}
	s.publish(ctx, events.OrderCancelled, updated, payload)

	return &CancelResult{Order: updated, RefundInitiated: refund}, nil
}

func (s *service) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	o, err := s.ownOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if !IsReturnable(o, now, s.cfg.ReturnWindow) {
		log.Warn().Stringer("order_id", orderID).Stringer("status", o.Status).Msg("service: return rejected")
		return nil, ErrNotReturnable
	}

	if err := s.repo.RequestReturn(ctx, orderID, reason, now); err != nil {
		if errors.Is(err, ErrNotReturnable) {
			return nil, ErrNotReturnable
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to request return")
		return nil, fmt.Errorf("service: failed to request return: %w", err)
	}

	previous := o.Status
	o.Status = StatusReturnRequested
	o.ReturnReason = &reason
	o.ReturnRequestedAt = &now
	o.UpdatedAt = now

	s.publish(ctx, events.OrderReturnRequested, o, events.OrderPayload{PreviousStatus: previous.String(), Reason: reason})
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, status Status, page pagination.Params) ([]Order, pagination.Meta, error) {
	orders, total, err := s.repo.ListByUser(ctx, userID, status, page)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, pagination.Meta{}, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, page.Meta(total), nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	return s.ownOrder(ctx, userID, orderID)
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, status Status, page pagination.Params) ([]Order, pagination.Meta, error) {
	orders, total, err := s.repo.ListBySeller(ctx, sellerID, status, page)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to fetch seller orders in repository")
		return nil, pagination.Meta{}, fmt.Errorf("service: failed to fetch seller orders: %w", err)
	}
	return orders, page.Meta(total), nil
}

func (s *service) UpdateStatusBySeller(ctx context.Context, sellerID, orderID uuid.UUID, newStatus Status) (*Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	sells := false
	for _, it := range current.Items {
		if it.SellerID == sellerID {
			sells = true
			break
		}
	}
	if !sells {
		return nil, ErrNotFound
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return current, nil
	}

	if !sellerTransitions[current.Status][newStatus] {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, current.Status, newStatus, s.now().UTC()); err != nil {
		if errors.Is(err, ErrInvalidStatusTransition) {
			return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidStatusTransition)
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", current.Status).Stringer("new_status", newStatus).
		Msg("service: order status updated successfully")
	s.publish(ctx, events.OrderStatusChanged, updated, events.OrderPayload{PreviousStatus: current.Status.String()})
	return updated, nil
}

func (s *service) invalidateStock(ctx context.Context, o *Order) {
	if s.deps.StockCache == nil {
		return
	}
	for _, it := range o.Items {
		if err := s.deps.StockCache.Invalidate(ctx, it.ProductID); err != nil {
			log.Warn().Err(err).Stringer("product_id", it.ProductID).Msg("service: product cache invalidation failed")
		}
	}
}

// publish fills the common payload fields from o. Failures are logged only.
func (s *service) publish(ctx context.Context, eventType string, o *Order, p events.OrderPayload) {
	p.OrderID = o.ID
	p.OrderNumber = o.OrderNumber
	p.UserID = o.UserID
	p.Status = o.Status.String()
	p.TotalAmount = o.TotalAmount

	e, err := events.NewOrderEvent(eventType, producerName, p)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to build event")
		return
	}
	if err := s.deps.Publisher.Publish(ctx, e); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Str("event_type", eventType).Msg("service: failed to publish event")
	}
}
