package http_test

import (
	"net/http"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/user"
)

func TestSellerHandler_UpdateStock(t *testing.T) {
	seller := newUser(user.RoleSeller)
	productID := uuid.Must(uuid.NewV4())
	qty := 12

	tests := []struct {
		name       string
		body       any
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{name: "updated", body: handler.UpdateStockRequest{StockQuantity: &qty}, wantStatus: http.StatusOK},
		{name: "other seller", body: handler.UpdateStockRequest{StockQuantity: &qty}, serviceErr: product.ErrNotOwner, wantStatus: http.StatusForbidden, wantError: "Product belongs to another seller"},
		{name: "missing quantity", body: map[string]any{}, wantStatus: http.StatusBadRequest, wantError: "Validation failed"},
		{name: "negative quantity", body: map[string]any{"stock_quantity": -1}, wantStatus: http.StatusBadRequest, wantError: "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductService)
			if tt.wantStatus != http.StatusBadRequest {
				if tt.serviceErr != nil {
					products.On("UpdateStock", mock.Anything, seller.ID, productID, qty).Return(nil, tt.serviceErr).Once()
				} else {
					products.On("UpdateStock", mock.Anything, seller.ID, productID, qty).
						Return(&product.Product{ID: productID, StockQuantity: qty}, nil).Once()
				}
			}

			router := handler.NewRouter(knownUsers(seller), nil, handler.NewSellerHandler(products, new(MockOrderService), nil))
			rr, resp := serve(t, router, http.MethodPatch, "/api/seller/inventory/"+productID.String(), seller, tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp.Error)
			}
			products.AssertExpectations(t)
		})
	}
}

func TestSellerHandler_CreateProduct_UnknownCategory(t *testing.T) {
	seller := newUser(user.RoleSeller)
	categoryID := uuid.Must(uuid.NewV4())

	products := new(MockProductService)
	products.On("CreateProduct", mock.Anything, seller.ID, mock.MatchedBy(func(p *product.Product) bool {
		return p.CategoryID != nil && *p.CategoryID == categoryID
	})).Return(product.ErrCategoryNotFound).Once()

	router := handler.NewRouter(knownUsers(seller), nil, handler.NewSellerHandler(products, new(MockOrderService), nil))
	body := handler.CreateProductRequest{CategoryID: &categoryID, Name: "Cat Eye", Price: 1299, StockQuantity: 4}
	rr, resp := serve(t, router, http.MethodPost, "/api/seller/products", seller, body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Category not found", resp.Error)
	products.AssertExpectations(t)
}

func TestSellerHandler_UpdateOrderStatus(t *testing.T) {
	seller := newUser(user.RoleSeller)
	orderID := uuid.Must(uuid.NewV4())

	orders := new(MockOrderService)
	orders.On("UpdateStatusBySeller", mock.Anything, seller.ID, orderID, order.StatusShipped).
		Return(&order.Order{ID: orderID, Status: order.StatusShipped}, nil).Once()
	orders.On("UpdateStatusBySeller", mock.Anything, seller.ID, orderID, order.StatusDelivered).
		Return(nil, order.ErrInvalidStatusTransition).Once()

	router := handler.NewRouter(knownUsers(seller), nil, handler.NewSellerHandler(new(MockProductService), orders, nil))
	path := "/api/seller/orders/" + orderID.String() + "/status"

	rr, resp := serve(t, router, http.MethodPatch, path, seller, handler.UpdateOrderStatusRequest{Status: "shipped"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)

	rr, resp = serve(t, router, http.MethodPatch, path, seller, handler.UpdateOrderStatusRequest{Status: "delivered"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid order status transition", resp.Error)

	rr, resp = serve(t, router, http.MethodPatch, path, seller, handler.UpdateOrderStatusRequest{Status: "cancelled"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "must be one of: pending confirmed processing shipped delivered", resp.Details["status"])

	orders.AssertExpectations(t)
}
