package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sarthaksaklani/enakart/internal/address"
)

type CreateAddressRequest struct {
	FullName     string `json:"full_name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	AddressLine1 string `json:"address_line1" validate:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country"`
	AddressType  string `json:"address_type" validate:"omitempty,oneof=home work other"`
	IsDefault    bool   `json:"is_default"`
}

type UpdateAddressRequest struct {
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,min=1"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,min=1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty" validate:"omitempty,min=1"`
	State        *string `json:"state,omitempty" validate:"omitempty,min=1"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,min=1"`
	Country      *string `json:"country,omitempty"`
	AddressType  *string `json:"address_type,omitempty" validate:"omitempty,oneof=home work other"`
	IsDefault    *bool   `json:"is_default,omitempty"`
}

type AddressHandler struct {
	addresses address.Service
	validate  *validator.Validate
}

func NewAddressHandler(addresses address.Service) *AddressHandler {
	return &AddressHandler{addresses: addresses, validate: newValidator()}
}

func (h *AddressHandler) RegisterRoutes(router chi.Router) {
	router.Route("/addresses", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		// The id may also arrive as ?id= on the collection path.
		r.Put("/", h.handleUpdate)
		r.Delete("/", h.handleDelete)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *AddressHandler) handleList(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context(), currentUser(r).ID)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch addresses")
		return
	}
	respondWithData(w, http.StatusOK, addresses)
}

func (h *AddressHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateAddressRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	a := &address.Address{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		AddressType:  req.AddressType,
		IsDefault:    req.IsDefault,
	}
	if err := h.addresses.Create(r.Context(), currentUser(r).ID, a); err != nil {
		respondWithServiceError(w, r, err, "Failed to create address")
		return
	}
	respondWithMessage(w, http.StatusCreated, a, "Address added successfully")
}

func (h *AddressHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Address id is required")
		return
	}
	var req UpdateAddressRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	a, err := h.addresses.Update(r.Context(), currentUser(r).ID, id, address.Update{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		AddressType:  req.AddressType,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update address")
		return
	}
	respondWithMessage(w, http.StatusOK, a, "Address updated successfully")
}

func (h *AddressHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Address id is required")
		return
	}

	if err := h.addresses.Delete(r.Context(), currentUser(r).ID, id); err != nil {
		respondWithServiceError(w, r, err, "Failed to delete address")
		return
	}
	respondWithMessage(w, http.StatusOK, nil, "Address deleted successfully")
}
