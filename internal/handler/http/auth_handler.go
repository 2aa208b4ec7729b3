package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarthaksaklani/enakart/internal/auth"
	"github.com/sarthaksaklani/enakart/internal/user"
)

type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type VerifyOTPRequest struct {
	Phone        string  `json:"phone" validate:"required"`
	OTP          string  `json:"otp" validate:"required"`
	FullName     *string `json:"full_name,omitempty"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Role         string  `json:"role,omitempty" validate:"omitempty,oneof=customer seller reseller"`
	BusinessName *string `json:"business_name,omitempty"`
	GSTNumber    *string `json:"gst_number,omitempty"`
}

type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,min=2"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	BusinessName *string `json:"business_name,omitempty"`
	GSTNumber    *string `json:"gst_number,omitempty"`
}

type VerifyOTPResponse struct {
	User      *user.User `json:"user"`
	IsNewUser bool       `json:"is_new_user"`
}

type AuthHandler struct {
	auth     auth.Service
	users    user.Service
	validate *validator.Validate
}

func NewAuthHandler(authSvc auth.Service, users user.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, users: users, validate: newValidator()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/send-otp", h.handleSendOTP)
	router.Post("/auth/verify-otp", h.handleVerifyOTP)
	router.With(RequireUser).Get("/users/me", h.handleGetMe)
	router.With(RequireUser).Put("/users/me", h.handleUpdateMe)
}

func (h *AuthHandler) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.auth.SendOTP(r.Context(), req.Phone); err != nil {
		respondWithServiceError(w, r, err, "Failed to send OTP")
		return
	}

	respondWithMessage(w, http.StatusOK, nil, "OTP sent successfully")
}

func (h *AuthHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	profile := user.Profile{
		FullName:     req.FullName,
		Email:        req.Email,
		Role:         user.Role(req.Role),
		BusinessName: req.BusinessName,
		GSTNumber:    req.GSTNumber,
	}
	u, created, err := h.auth.VerifyOTP(r.Context(), req.Phone, req.OTP, profile)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to verify OTP")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithData(w, status, VerifyOTPResponse{User: u, IsNewUser: created})
}

func (h *AuthHandler) handleGetMe(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, currentUser(r))
}

func (h *AuthHandler) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), currentUser(r).ID, user.Profile{
		FullName:     req.FullName,
		Email:        req.Email,
		BusinessName: req.BusinessName,
		GSTNumber:    req.GSTNumber,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update profile")
		return
	}

	respondWithData(w, http.StatusOK, u)
}
