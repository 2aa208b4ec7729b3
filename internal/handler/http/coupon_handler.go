package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarthaksaklani/enakart/internal/coupon"
)

// ValidateCouponRequest is checked by the coupon service so the rule
// messages stay in one place.
type ValidateCouponRequest struct {
	Code        string  `json:"code"`
	OrderAmount float64 `json:"order_amount"`
}

type CouponHandler struct {
	coupons  coupon.Service
	validate *validator.Validate
}

func NewCouponHandler(coupons coupon.Service) *CouponHandler {
	return &CouponHandler{coupons: coupons, validate: newValidator()}
}

func (h *CouponHandler) RegisterRoutes(router chi.Router) {
	router.Route("/coupons", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleListAvailable)
		r.Post("/validate", h.handleValidate)
	})
}

func (h *CouponHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	result, err := h.coupons.Validate(r.Context(), currentUser(r).ID, strings.TrimSpace(req.Code), req.OrderAmount)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to validate coupon")
		return
	}
	respondWithMessage(w, http.StatusOK, result, "Coupon applied successfully")
}

func (h *CouponHandler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListAvailable(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch coupons")
		return
	}
	respondWithData(w, http.StatusOK, coupons)
}
