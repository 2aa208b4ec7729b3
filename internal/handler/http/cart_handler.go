package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/cart"
)

type AddCartItemRequest struct {
	ProductID        uuid.UUID          `json:"product_id" validate:"required"`
	Quantity         int                `json:"quantity" validate:"required,min=1"`
	LensType         *string            `json:"lens_type,omitempty"`
	LensPrescription *cart.Prescription `json:"lens_prescription,omitempty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartHandler struct {
	carts    cart.Service
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts, validate: newValidator()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Route("/cart", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleGetCart)
		r.Delete("/", h.handleClearCart)
		r.Post("/items", h.handleAddItem)
		r.Put("/items/{id}", h.handleUpdateItem)
		r.Delete("/items/{id}", h.handleRemoveItem)
	})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	c, err := h.carts.GetCart(r.Context(), u.ID, u.Role)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch cart")
		return
	}
	respondWithData(w, http.StatusOK, c)
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u := currentUser(r)
	item, err := h.carts.AddItem(r.Context(), u.ID, u.Role, cart.AddItemInput{
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		LensType:         req.LensType,
		LensPrescription: req.LensPrescription,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to add item to cart")
		return
	}
	respondWithMessage(w, http.StatusCreated, item, "Item added to cart")
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}
	var req UpdateCartItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u := currentUser(r)
	item, err := h.carts.UpdateItem(r.Context(), u.ID, u.Role, id, req.Quantity)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update cart item")
		return
	}
	respondWithMessage(w, http.StatusOK, item, "Cart updated")
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), currentUser(r).ID, id); err != nil {
		respondWithServiceError(w, r, err, "Failed to remove cart item")
		return
	}
	respondWithMessage(w, http.StatusOK, nil, "Item removed from cart")
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), currentUser(r).ID); err != nil {
		respondWithServiceError(w, r, err, "Failed to clear cart")
		return
	}
	respondWithMessage(w, http.StatusOK, nil, "Cart cleared")
}
