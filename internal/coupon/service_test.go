package coupon_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/coupon"
)

type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponRepository) CountUserUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepository) ListAvailable(ctx context.Context, now time.Time) ([]coupon.Coupon, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coupon.Coupon), args.Error(1)
}

func TestCouponService_Validate_Percentage(t *testing.T) {
	repo := new(MockCouponRepository)
	svc := coupon.NewService(repo)
	ctx := context.Background()

	maxDiscount := 100.0
	c := &coupon.Coupon{
		ID:                uuid.Must(uuid.NewV4()),
		Code:              "SAVE10",
		DiscountType:      coupon.DiscountPercentage,
		DiscountValue:     10,
		MaxDiscountAmount: &maxDiscount,
		ValidFrom:         time.Now().Add(-time.Hour),
		IsActive:          true,
	}
	repo.On("GetByCode", ctx, "save10").Return(c, nil).Once()

	res, err := svc.Validate(ctx, uuid.Must(uuid.NewV4()), "save10", 2000)

	require.NoError(t, err)
	assert.Equal(t, &coupon.Result{
		CouponID:       c.ID,
		Code:           "SAVE10",
		DiscountType:   coupon.DiscountPercentage,
		DiscountValue:  10,
		DiscountAmount: 100,
		FinalAmount:    1900,
	}, res)
	repo.AssertNotCalled(t, "CountUserUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestCouponService_Validate_PerUserLimit(t *testing.T) {
	repo := new(MockCouponRepository)
	svc := coupon.NewService(repo)
	ctx := context.Background()

	userID := uuid.Must(uuid.NewV4())
	limit := 1
	c := &coupon.Coupon{
		ID:            uuid.Must(uuid.NewV4()),
		Code:          "FIRST50",
		DiscountType:  coupon.DiscountFixed,
		DiscountValue: 50,
		PerUserLimit:  &limit,
		ValidFrom:     time.Now().Add(-time.Hour),
		IsActive:      true,
	}
	repo.On("GetByCode", ctx, "FIRST50").Return(c, nil).Once()
	repo.On("CountUserUsage", ctx, c.ID, userID).Return(1, nil).Once()

	_, err := svc.Validate(ctx, userID, "FIRST50", 300)

	var vErr *coupon.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "You have already used this coupon", vErr.Message)
	repo.AssertExpectations(t)
}

func TestCouponService_Validate_UnknownCode(t *testing.T) {
	repo := new(MockCouponRepository)
	svc := coupon.NewService(repo)
	ctx := context.Background()

	repo.On("GetByCode", ctx, "NOPE").Return(nil, coupon.ErrNotFound).Once()

	_, err := svc.Validate(ctx, uuid.Must(uuid.NewV4()), "NOPE", 100)

	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestCouponService_Validate_MissingInput(t *testing.T) {
	svc := coupon.NewService(new(MockCouponRepository))
	ctx := context.Background()

	var vErr *coupon.ValidationError

	_, err := svc.Validate(ctx, uuid.Must(uuid.NewV4()), " ", 100)
	require.ErrorAs(t, err, &vErr)

	_, err = svc.Validate(ctx, uuid.Must(uuid.NewV4()), "SAVE10", 0)
	require.ErrorAs(t, err, &vErr)
}
