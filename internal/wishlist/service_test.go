package wishlist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

type MockWishlistRepository struct {
	mock.Mock
}

func (m *MockWishlistRepository) List(ctx context.Context, userID uuid.UUID) ([]wishlist.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wishlist.Entry), args.Error(1)
}

func (m *MockWishlistRepository) Add(ctx context.Context, userID, productID uuid.UUID) (*wishlist.Entry, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wishlist.Entry), args.Error(1)
}

func (m *MockWishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func TestWishlistService_Add(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())

	testCases := []struct {
		name       string
		productErr error
		repoErr    error
		wantErr    error
	}{
		{name: "added"},
		{name: "duplicate", repoErr: wishlist.ErrAlreadyInWishlist, wantErr: wishlist.ErrAlreadyInWishlist},
		{name: "unknown product", productErr: product.ErrNotFound, wantErr: wishlist.ErrProductNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockWishlistRepository)
			products := new(MockProductLookup)
			svc := wishlist.NewService(repo, products)

			if tc.productErr != nil {
				products.On("GetByID", ctx, productID).Return(nil, tc.productErr).Once()
			} else {
				products.On("GetByID", ctx, productID).Return(&product.Product{ID: productID, Name: "Round Metal", Price: 900}, nil).Once()
				if tc.repoErr != nil {
					repo.On("Add", ctx, userID, productID).Return(nil, tc.repoErr).Once()
				} else {
					repo.On("Add", ctx, userID, productID).Return(&wishlist.Entry{ID: uuid.Must(uuid.NewV4()), ProductID: productID}, nil).Once()
				}
			}

			e, err := svc.Add(ctx, userID, productID)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Round Metal", e.Product.Name)
			repo.AssertExpectations(t)
		})
	}
}

func TestWishlistService_Remove(t *testing.T) {
	ctx := context.Background()
	repo := new(MockWishlistRepository)
	svc := wishlist.NewService(repo, new(MockProductLookup))
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())

	repo.On("Remove", ctx, userID, productID).Return(wishlist.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Remove(ctx, userID, productID), wishlist.ErrNotFound)

	repo.On("Remove", ctx, userID, productID).Return(errors.New("conn reset")).Once()
	err := svc.Remove(ctx, userID, productID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, wishlist.ErrNotFound)
}
