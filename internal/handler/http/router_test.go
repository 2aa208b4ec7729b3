package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	handler "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/user"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestRouter_Identity(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	wl := new(MockWishlistService)
	wl.On("List", mock.Anything, customer.ID).Return([]wishlist.Entry{}, nil)

	router := handler.NewRouter(knownUsers(customer), nil, handler.NewWishlistHandler(wl))

	t.Run("missing header", func(t *testing.T) {
		rr, resp := serve(t, router, http.MethodGet, "/api/wishlist", nil, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, "Unauthorized: missing or invalid x-user-id header", resp.Error)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/wishlist", nil)
		req.Header.Set(handler.HeaderUserID, "not-a-uuid")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rr, _ := serve(t, router, http.MethodGet, "/api/wishlist", newUser(user.RoleCustomer), nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("known user", func(t *testing.T) {
		rr, resp := serve(t, router, http.MethodGet, "/api/wishlist", customer, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, resp.Success)
		assert.JSONEq(t, `[]`, string(resp.Data))
	})
}

func TestRouter_IdentifyLookupFailure(t *testing.T) {
	loader := new(MockUserLoader)
	loader.On("GetUserByID", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	router := handler.NewRouter(loader, nil, handler.NewWishlistHandler(new(MockWishlistService)))
	rr, resp := serve(t, router, http.MethodGet, "/api/wishlist", newUser(user.RoleCustomer), nil)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "Service temporarily unavailable", resp.Error)
	loader.AssertExpectations(t)
}

func TestRouter_SellerRoutesRequireSellerRole(t *testing.T) {
	customer := newUser(user.RoleCustomer)
	reseller := newUser(user.RoleReseller)
	seller := newUser(user.RoleSeller)

	products := new(MockProductService)
	products.On("ListSellerProducts", mock.Anything, seller.ID, pagination.Params{Page: 1, Limit: pagination.DefaultLimit}).
		Return([]product.Product{}, pagination.Meta{Page: 1, Limit: pagination.DefaultLimit}, nil).Once()

	router := handler.NewRouter(knownUsers(customer, reseller, seller), nil,
		handler.NewSellerHandler(products, new(MockOrderService), nil))

	for _, caller := range []*user.User{customer, reseller} {
		rr, resp := serve(t, router, http.MethodGet, "/api/seller/products", caller, nil)
		assert.Equal(t, http.StatusForbidden, rr.Code, "role %s", caller.Role)
		assert.Equal(t, "Forbidden: insufficient role", resp.Error)
	}

	rr, _ := serve(t, router, http.MethodGet, "/api/seller/products", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, resp := serve(t, router, http.MethodGet, "/api/seller/products", seller, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)
	products.AssertExpectations(t)
}

func TestRouter_Health(t *testing.T) {
	rr, resp := serve(t, handler.NewRouter(knownUsers(), stubPinger{}), http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Data))

	rr, resp = serve(t, handler.NewRouter(knownUsers(), stubPinger{err: errors.New("dial tcp: connection refused")}), http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.False(t, resp.Success)
}

func TestRouter_UnknownRoute(t *testing.T) {
	rr, resp := serve(t, handler.NewRouter(knownUsers(), nil), http.MethodGet, "/api/nope", nil, nil)

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", resp.Error)
}

func TestRouter_ProductViewerRole(t *testing.T) {
	reseller := newUser(user.RoleReseller)
	id := uuid.Must(uuid.NewV4())

	products := new(MockProductService)
	products.On("GetProduct", mock.Anything, id, user.RoleCustomer).Return(&product.Product{ID: id, Price: 1000, EffectivePrice: 1000}, nil).Once()
	products.On("GetProduct", mock.Anything, id, user.RoleReseller).Return(&product.Product{ID: id, Price: 1000, EffectivePrice: 800}, nil).Once()

	router := handler.NewRouter(knownUsers(reseller), nil, handler.NewCatalogHandler(products))

	rr, _ := serve(t, router, http.MethodGet, "/api/products/"+id.String(), nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = serve(t, router, http.MethodGet, "/api/products/"+id.String(), reseller, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, resp := serve(t, router, http.MethodGet, "/api/products/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid product id", resp.Error)

	products.AssertExpectations(t)
}
