package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/coupon"
	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/user"
)

func TestCouponHandler_Validate(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	want := &coupon.Result{
		CouponID:       uuid.Must(uuid.NewV4()),
		Code:           "SAVE10",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  10,
		DiscountAmount: 100,
		FinalAmount:    1900,
	}

	svc := new(MockCouponService)
	svc.On("Validate", mock.Anything, customer.ID, "SAVE10", 2000.0).Return(want, nil).Once()
	router := handler.NewRouter(knownUsers(customer), nil, handler.NewCouponHandler(svc))

	rr, resp := serve(t, router, http.MethodPost, "/api/coupons/validate", customer, handler.ValidateCouponRequest{Code: " SAVE10 ", OrderAmount: 2000})

	require.Equal(t, http.StatusOK, rr.Code)
	var got coupon.Result
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	if diff := cmp.Diff(*want, got); diff != "" {
		t.Errorf("coupon result mismatch (-want +got):\n%s", diff)
	}
	svc.AssertExpectations(t)
}

func TestCouponHandler_ValidateRejections(t *testing.T) {
	customer := newUser(user.RoleCustomer)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{name: "unknown code", err: coupon.ErrNotFound, wantStatus: http.StatusNotFound, wantError: "Invalid coupon code"},
		{name: "expired", err: &coupon.ValidationError{Message: "Coupon has expired"}, wantStatus: http.StatusBadRequest, wantError: "Coupon has expired"},
		{name: "minimum", err: &coupon.ValidationError{Message: "Minimum order amount of 500 required"}, wantStatus: http.StatusBadRequest, wantError: "Minimum order amount of 500 required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCouponService)
			svc.On("Validate", mock.Anything, customer.ID, "CODE", 100.0).Return(nil, tt.err).Once()
			router := handler.NewRouter(knownUsers(customer), nil, handler.NewCouponHandler(svc))

			rr, resp := serve(t, router, http.MethodPost, "/api/coupons/validate", customer, handler.ValidateCouponRequest{Code: "CODE", OrderAmount: 100})

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}
