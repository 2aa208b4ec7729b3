package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/cart"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/pagination"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderLineRequest struct {
	ProductID        uuid.UUID          `json:"product_id" validate:"required"`
	Quantity         int                `json:"quantity" validate:"required,min=1"`
	LensType         *string            `json:"lens_type,omitempty"`
	LensPrescription *cart.Prescription `json:"lens_prescription,omitempty"`
}

type CreateOrderRequest struct {
	Items           []OrderLineRequest     `json:"items,omitempty" validate:"omitempty,dive"`
	AddressID       *uuid.UUID             `json:"address_id,omitempty"`
	ShippingAddress *order.ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
	Notes           string                 `json:"notes,omitempty" validate:"max=500"`
}

type CancelOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Reason  *string   `json:"reason,omitempty"`
}

type ReturnOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Reason  string    `json:"reason" validate:"required"`
}

type OrderHandler struct {
	orders   order.Service
	validate *validator.Validate
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders, validate: newValidator()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Route("/orders", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleList)
		r.Post("/create", h.handleCreate)
		r.Post("/cancel", h.handleCancel)
		r.Post("/return", h.handleReturn)
		r.Get("/{id}", h.handleGet)
	})
}

func (h *OrderHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := order.CreateInput{
		AddressID:       req.AddressID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   order.PaymentMethod(req.PaymentMethod),
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		IdempotencyKey:  r.Header.Get(HeaderIdempotencyKey),
	}
	for _, l := range req.Items {
		in.Items = append(in.Items, order.LineInput{
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			LensType:         l.LensType,
			LensPrescription: l.LensPrescription,
		})
	}

	u := currentUser(r)
	o, err := h.orders.CreateOrder(r.Context(), order.Buyer{ID: u.ID, Role: u.Role}, in)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create order")
		return
	}
	respondWithMessage(w, http.StatusCreated, o, "Order placed successfully")
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	res, err := h.orders.CancelOrder(r.Context(), currentUser(r).ID, req.OrderID, req.Reason)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to cancel order")
		return
	}
	respondWithMessage(w, http.StatusOK, res, "Order cancelled successfully")
}

func (h *OrderHandler) handleReturn(w http.ResponseWriter, r *http.Request) {
	var req ReturnOrderRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.orders.RequestReturn(r.Context(), currentUser(r).ID, req.OrderID, req.Reason)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to request return")
		return
	}
	respondWithMessage(w, http.StatusOK, o, "Return requested successfully")
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, meta, err := h.orders.ListOrders(r.Context(), currentUser(r).ID, order.Status(q.Get("status")), pagination.FromQuery(q))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch orders")
		return
	}
	respondWithData(w, http.StatusOK, OrderListResponse{Orders: orders, Pagination: meta})
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), currentUser(r).ID, id)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch order")
		return
	}
	respondWithData(w, http.StatusOK, o)
}
