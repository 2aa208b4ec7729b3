package http_test

import (
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/user"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

func TestWishlistHandler_Add(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	productID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{name: "added", wantStatus: http.StatusCreated},
		{name: "duplicate", serviceErr: wishlist.ErrAlreadyInWishlist, wantStatus: http.StatusBadRequest, wantError: "Product already in wishlist"},
		{name: "unknown product", serviceErr: wishlist.ErrProductNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWishlistService)
			if tt.serviceErr != nil {
				svc.On("Add", mock.Anything, customer.ID, productID).Return(nil, tt.serviceErr).Once()
			} else {
				svc.On("Add", mock.Anything, customer.ID, productID).
					Return(&wishlist.Entry{ID: uuid.Must(uuid.NewV4()), ProductID: productID}, nil).Once()
			}

			router := handler.NewRouter(knownUsers(customer), nil, handler.NewWishlistHandler(svc))
			rr, resp := serve(t, router, http.MethodPost, "/api/wishlist", customer, handler.AddWishlistRequest{ProductID: productID})

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.serviceErr == nil, resp.Success)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestWishlistHandler_AddRejectsUnknownFields(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	svc := new(MockWishlistService)
	router := handler.NewRouter(knownUsers(customer), nil, handler.NewWishlistHandler(svc))

	rr, resp := serve(t, router, http.MethodPost, "/api/wishlist", customer, map[string]string{
		"product_id": uuid.Must(uuid.NewV4()).String(),
		"extra":      "x",
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, resp.Error, "Invalid request payload")
	svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistHandler_Remove(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	productID := uuid.Must(uuid.NewV4())

	svc := new(MockWishlistService)
	svc.On("Remove", mock.Anything, customer.ID, productID).Return(nil).Twice()
	router := handler.NewRouter(knownUsers(customer), nil, handler.NewWishlistHandler(svc))

	rr, _ := serve(t, router, http.MethodDelete, "/api/wishlist?product_id="+productID.String(), customer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = serve(t, router, http.MethodDelete, "/api/wishlist/"+productID.String(), customer, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, resp := serve(t, router, http.MethodDelete, "/api/wishlist", customer, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "product_id is required", resp.Error)

	svc.On("Remove", mock.Anything, customer.ID, productID).Return(wishlist.ErrNotFound).Once()
	rr, resp = serve(t, router, http.MethodDelete, "/api/wishlist/"+productID.String(), customer, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Product not in wishlist", resp.Error)

	svc.AssertExpectations(t)
}
