package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/user"
)

func TestOrderHandler_Create(t *testing.T) {
	reseller := newUser(user.RoleReseller)
	productID := uuid.Must(uuid.NewV4())
	addressID := uuid.Must(uuid.NewV4())

	svc := new(MockOrderService)
	created := &order.Order{ID: uuid.Must(uuid.NewV4()), OrderNumber: "ORD-20260101-ABCDEF", Status: order.StatusPending}
	svc.On("CreateOrder", mock.Anything, order.Buyer{ID: reseller.ID, Role: user.RoleReseller},
		mock.MatchedBy(func(in order.CreateInput) bool {
			return len(in.Items) == 1 &&
				in.Items[0].ProductID == productID &&
				in.Items[0].Quantity == 2 &&
				in.AddressID != nil && *in.AddressID == addressID &&
				in.PaymentMethod == order.PaymentCOD &&
				in.IdempotencyKey == "key-1"
		})).Return(created, nil).Once()

	router := handler.NewRouter(knownUsers(reseller), nil, handler.NewOrderHandler(svc))

	body, err := json.Marshal(handler.CreateOrderRequest{
		Items:         []handler.OrderLineRequest{{ProductID: productID, Quantity: 2}},
		AddressID:     &addressID,
		PaymentMethod: "cod",
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create", bytes.NewReader(body))
	req.Header.Set(handler.HeaderUserID, reseller.ID.String())
	req.Header.Set(handler.HeaderIdempotencyKey, "key-1")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp apiResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	var got order.Order
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.OrderNumber, got.OrderNumber)
	svc.AssertExpectations(t)
}

func TestOrderHandler_CreateErrors(t *testing.T) {
	customer := newUser(user.RoleCustomer)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "insufficient stock",
			err:        &order.StockError{ProductName: "Aviator", Available: 1, Requested: 3},
			wantStatus: http.StatusBadRequest,
			wantError:  "Insufficient stock for Aviator. Available: 1, requested: 3",
		},
		{name: "empty cart", err: order.ErrEmptyOrder, wantStatus: http.StatusBadRequest, wantError: "Order has no items"},
		{name: "inactive product", err: order.ErrProductUnavailable, wantStatus: http.StatusNotFound},
		{name: "database down", err: fmt.Errorf("service: %w", errors.New("dial tcp: connection refused")), wantStatus: http.StatusServiceUnavailable, wantError: "Service temporarily unavailable"},
		{name: "unexpected", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "Failed to create order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err).Once()
			router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

			rr, resp := serve(t, router, http.MethodPost, "/api/orders/create", customer, handler.CreateOrderRequest{PaymentMethod: "upi"})

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.False(t, resp.Success)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func TestOrderHandler_CreateValidation(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	svc := new(MockOrderService)
	router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

	rr, resp := serve(t, router, http.MethodPost, "/api/orders/create", customer, map[string]any{
		"items": []map[string]any{{"product_id": uuid.Must(uuid.NewV4()).String(), "quantity": 0}},
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Equal(t, "is required", resp.Details["payment_method"])
	assert.Contains(t, resp.Details, "quantity")
	svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_Cancel(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	orderID := uuid.Must(uuid.NewV4())

	t.Run("shipped order", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, customer.ID, orderID, (*string)(nil)).
			Return(nil, &order.StatusError{Action: "cancelled", Status: order.StatusShipped}).Once()
		router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

		rr, resp := serve(t, router, http.MethodPost, "/api/orders/cancel", customer, handler.CancelOrderRequest{OrderID: orderID})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Order cannot be cancelled in its current status (shipped)", resp.Error)
		svc.AssertExpectations(t)
	})

	t.Run("paid order", func(t *testing.T) {
		reason := "changed my mind"
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, customer.ID, orderID, &reason).
			Return(&order.CancelResult{Order: &order.Order{ID: orderID, Status: order.StatusCancelled}, RefundInitiated: true}, nil).Once()
		router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

		rr, resp := serve(t, router, http.MethodPost, "/api/orders/cancel", customer, handler.CancelOrderRequest{OrderID: orderID, Reason: &reason})

		require.Equal(t, http.StatusOK, rr.Code)
		var got struct {
			RefundInitiated bool `json:"refund_initiated"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.True(t, got.RefundInitiated)
		svc.AssertExpectations(t)
	})

	t.Run("foreign order", func(t *testing.T) {
		svc := new(MockOrderService)
		svc.On("CancelOrder", mock.Anything, customer.ID, orderID, (*string)(nil)).Return(nil, order.ErrNotFound).Once()
		router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

		rr, resp := serve(t, router, http.MethodPost, "/api/orders/cancel", customer, handler.CancelOrderRequest{OrderID: orderID})

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Order not found", resp.Error)
	})
}

func TestOrderHandler_ReturnRequiresReason(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	svc := new(MockOrderService)
	router := handler.NewRouter(knownUsers(customer), nil, handler.NewOrderHandler(svc))

	rr, resp := serve(t, router, http.MethodPost, "/api/orders/return", customer, map[string]string{
		"order_id": uuid.Must(uuid.NewV4()).String(),
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "is required", resp.Details["reason"])
	svc.AssertNotCalled(t, "RequestReturn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
