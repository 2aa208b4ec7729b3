package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/coupon"
	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/user"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

type MockUserLoader struct {
	mock.Mock
}

func (m *MockUserLoader) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type MockWishlistService struct {
	mock.Mock
}

func (m *MockWishlistService) List(ctx context.Context, userID uuid.UUID) ([]wishlist.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wishlist.Entry), args.Error(1)
}

func (m *MockWishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*wishlist.Entry, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlist.Entry), args.Error(1)
}

func (m *MockWishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, buyer order.Buyer, in order.CreateInput) (*order.Order, error) {
	args := m.Called(ctx, buyer, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason *string) (*order.CancelResult, error) {
	args := m.Called(ctx, userID, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.CancelResult), args.Error(1)
}

func (m *MockOrderService) RequestReturn(ctx context.Context, userID, orderID uuid.UUID, reason string) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, status order.Status, page pagination.Params) ([]order.Order, pagination.Meta, error) {
	args := m.Called(ctx, userID, status, page)
	if args.Get(0) == nil {
		return nil, pagination.Meta{}, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListSellerOrders(ctx context.Context, sellerID uuid.UUID, status order.Status, page pagination.Params) ([]order.Order, pagination.Meta, error) {
	args := m.Called(ctx, sellerID, status, page)
	if args.Get(0) == nil {
		return nil, pagination.Meta{}, args.Error(2)
	}
	return args.Get(0).([]order.Order), args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *MockOrderService) UpdateStatusBySeller(ctx context.Context, sellerID, orderID uuid.UUID, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, sellerID, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Validate(ctx context.Context, userID uuid.UUID, code string, amount float64) (*coupon.Result, error) {
	args := m.Called(ctx, userID, code, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Result), args.Error(1)
}

func (m *MockCouponService) ListAvailable(ctx context.Context) ([]coupon.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coupon.Coupon), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) ListProducts(ctx context.Context, f product.Filter, viewer user.Role) ([]product.Product, pagination.Meta, error) {
	args := m.Called(ctx, f, viewer)
	if args.Get(0) == nil {
		return nil, pagination.Meta{}, args.Error(2)
	}
	return args.Get(0).([]product.Product), args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID, viewer user.Role) (*product.Product, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) ListCategories(ctx context.Context) ([]product.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Category), args.Error(1)
}

func (m *MockProductService) ListSellerProducts(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]product.Product, pagination.Meta, error) {
	args := m.Called(ctx, sellerID, page)
	if args.Get(0) == nil {
		return nil, pagination.Meta{}, args.Error(2)
	}
	return args.Get(0).([]product.Product), args.Get(1).(pagination.Meta), args.Error(2)
}

func (m *MockProductService) GetSellerProduct(ctx context.Context, sellerID, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, sellerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, p *product.Product) error {
	return m.Called(ctx, sellerID, p).Error(0)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, u product.Update) (*product.Product, error) {
	args := m.Called(ctx, sellerID, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	return m.Called(ctx, sellerID, id).Error(0)
}

func (m *MockProductService) Inventory(ctx context.Context, sellerID uuid.UUID) (product.Inventory, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(product.Inventory), args.Error(1)
}

func (m *MockProductService) UpdateStock(ctx context.Context, sellerID, id uuid.UUID, quantity int) (*product.Product, error) {
	args := m.Called(ctx, sellerID, id, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

// apiResponse mirrors the response envelope.
type apiResponse struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newUser(role user.Role) *user.User {
	return &user.User{ID: uuid.Must(uuid.NewV4()), Phone: "+919876543210", Role: role, IsVerified: true}
}

// knownUsers returns a loader that resolves exactly the given users.
func knownUsers(users ...*user.User) *MockUserLoader {
	loader := new(MockUserLoader)
	for _, u := range users {
		loader.On("GetUserByID", mock.Anything, u.ID).Return(u, nil).Maybe()
	}
	loader.On("GetUserByID", mock.Anything, mock.Anything).Return(nil, user.ErrNotFound).Maybe()
	return loader
}

func serve(t *testing.T, router http.Handler, method, path string, caller *user.User, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(handler.HeaderUserID, caller.ID.String())
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body: %s", rr.Body.String())
	return rr, resp
}
