package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/review"
)

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Comment   string    `json:"comment"`
}

type UpdateReviewRequest struct {
	ReviewID *uuid.UUID `json:"review_id,omitempty"`
	Rating   *int       `json:"rating,omitempty"`
	Title    *string    `json:"title,omitempty"`
	Comment  *string    `json:"comment,omitempty"`
}

type ReviewHandler struct {
	reviews  review.Service
	validate *validator.Validate
}

func NewReviewHandler(reviews review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, validate: newValidator()}
}

func (h *ReviewHandler) RegisterRoutes(router chi.Router) {
	router.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.handleList)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/", h.handleCreate)
			r.Put("/", h.handleUpdate)
			r.Put("/{id}", h.handleUpdate)
		})
	})
}

func (h *ReviewHandler) handleList(w http.ResponseWriter, r *http.Request) {
	productID, ok := idParam(r, "product_id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	res, err := h.reviews.ListForProduct(r.Context(), productID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch reviews")
		return
	}
	respondWithData(w, http.StatusOK, res)
}

func (h *ReviewHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	rv, err := h.reviews.Create(r.Context(), currentUser(r).ID, review.CreateInput{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to create review")
		return
	}
	respondWithMessage(w, http.StatusCreated, rv, "Review submitted for approval")
}

func (h *ReviewHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	id, ok := idParam(r, "id")
	if !ok {
		if req.ReviewID == nil {
			respondWithError(w, http.StatusBadRequest, "review_id is required")
			return
		}
		id = *req.ReviewID
	}

	rv, err := h.reviews.Update(r.Context(), currentUser(r).ID, id, review.UpdateInput{
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update review")
		return
	}
	respondWithMessage(w, http.StatusOK, rv, "Review updated successfully")
}
