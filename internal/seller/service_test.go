package seller_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/seller"
)

type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) SaleLines(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]seller.SaleLine, error) {
	args := m.Called(ctx, sellerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seller.SaleLine), args.Error(1)
}

func (m *MockSellerRepository) InventoryCounts(ctx context.Context, sellerID uuid.UUID) (seller.InventoryCounts, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).(seller.InventoryCounts), args.Error(1)
}

func (m *MockSellerRepository) Payments(ctx context.Context, sellerID uuid.UUID, status string, page pagination.Params) ([]seller.PaymentRow, int, error) {
	args := m.Called(ctx, sellerID, status, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]seller.PaymentRow), args.Int(1), args.Error(2)
}

func (m *MockSellerRepository) PaymentGroups(ctx context.Context, sellerID uuid.UUID) ([]seller.PaymentGroup, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]seller.PaymentGroup), args.Error(1)
}

func TestSellerService_Analytics(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSellerRepository)
	svc := seller.NewService(repo, config.SellerConfig{CommissionRate: 0.1})
	sellerID := uuid.Must(uuid.NewV4())

	var windows [][2]time.Time
	repo.On("SaleLines", ctx, sellerID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			windows = append(windows, [2]time.Time{args.Get(2).(time.Time), args.Get(3).(time.Time)})
		}).
		Return([]seller.SaleLine{}, nil).Twice()
	repo.On("InventoryCounts", ctx, sellerID).Return(seller.InventoryCounts{TotalProducts: 12, LowStockProducts: 3}, nil).Once()

	a, err := svc.Analytics(ctx, sellerID, "7d")

	require.NoError(t, err)
	assert.Equal(t, "7d", a.Period)
	assert.Equal(t, 12, a.TotalProducts)
	assert.Equal(t, 3, a.LowStockProducts)

	require.Len(t, windows, 2)
	week := 7 * 24 * time.Hour
	assert.Equal(t, week, windows[0][1].Sub(windows[0][0]))
	assert.Equal(t, windows[0][0], windows[1][1], "previous period ends where the current one starts")
	assert.Equal(t, week, windows[1][1].Sub(windows[1][0]))
	repo.AssertExpectations(t)
}

func TestSellerService_Analytics_InvalidPeriod(t *testing.T) {
	repo := new(MockSellerRepository)
	svc := seller.NewService(repo, config.SellerConfig{})

	_, err := svc.Analytics(context.Background(), uuid.Must(uuid.NewV4()), "forever")

	assert.ErrorIs(t, err, seller.ErrInvalidPeriod)
	repo.AssertNotCalled(t, "SaleLines", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSellerService_Payments(t *testing.T) {
	ctx := context.Background()
	repo := new(MockSellerRepository)
	svc := seller.NewService(repo, config.SellerConfig{CommissionRate: 0.2})
	sellerID := uuid.Must(uuid.NewV4())
	page := pagination.Params{Page: 2, Limit: 10}

	repo.On("Payments", ctx, sellerID, "paid", page).Return([]seller.PaymentRow{{OrderNumber: "ORD-1", Amount: 100}}, 11, nil).Once()
	repo.On("PaymentGroups", ctx, sellerID).Return([]seller.PaymentGroup{{OrderStatus: "delivered", PaymentStatus: "paid", Amount: 1000}}, nil).Once()

	got, err := svc.Payments(ctx, sellerID, "paid", page)

	require.NoError(t, err)
	assert.Len(t, got.Payments, 1)
	assert.Equal(t, 200.0, got.Summary.Commission)
	assert.Equal(t, 800.0, got.Summary.NetEarnings)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 10, Total: 11, TotalPages: 2}, got.Pagination)
}
