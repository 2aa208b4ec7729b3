package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

type AddWishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type WishlistHandler struct {
	wishlist wishlist.Service
	validate *validator.Validate
}

func NewWishlistHandler(svc wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlist: svc, validate: newValidator()}
}

func (h *WishlistHandler) RegisterRoutes(router chi.Router) {
	router.Route("/wishlist", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleList)
		r.Post("/", h.handleAdd)
		r.Delete("/", h.handleRemove)
		r.Delete("/{product_id}", h.handleRemove)
	})
}

func (h *WishlistHandler) handleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.wishlist.List(r.Context(), currentUser(r).ID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch wishlist")
		return
	}
	respondWithData(w, http.StatusOK, entries)
}

func (h *WishlistHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddWishlistRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	entry, err := h.wishlist.Add(r.Context(), currentUser(r).ID, req.ProductID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to add to wishlist")
		return
	}
	respondWithMessage(w, http.StatusCreated, entry, "Added to wishlist")
}

func (h *WishlistHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "product_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	if err := h.wishlist.Remove(r.Context(), currentUser(r).ID, productID); err != nil {
		respondWithServiceError(w, r, err, "Failed to remove from wishlist")
		return
	}
	respondWithMessage(w, http.StatusOK, nil, "Removed from wishlist")
}
