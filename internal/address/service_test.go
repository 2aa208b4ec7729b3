package address_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/address"
)

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) List(ctx context.Context, userID uuid.UUID) ([]address.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]address.Address), args.Error(1)
}

func (m *MockAddressRepository) Get(ctx context.Context, userID, id uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressRepository) Create(ctx context.Context, a *address.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAddressRepository) Update(ctx context.Context, a *address.Address) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func TestAddressService_Create_Defaults(t *testing.T) {
	repo := new(MockAddressRepository)
	svc := address.NewService(repo)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	repo.On("Create", ctx, mock.MatchedBy(func(a *address.Address) bool {
		return a.UserID == userID && a.Country == "India" && a.AddressType == "home"
	})).Return(nil).Once()

	err := svc.Create(ctx, userID, &address.Address{FullName: "Asha", City: "Pune"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAddressService_Update_ForeignAddress(t *testing.T) {
	repo := new(MockAddressRepository)
	svc := address.NewService(repo)
	ctx := context.Background()
	userID, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	repo.On("Get", ctx, userID, id).Return(nil, address.ErrNotFound).Once()

	city := "Delhi"
	_, err := svc.Update(ctx, userID, id, address.Update{City: &city})

	assert.ErrorIs(t, err, address.ErrNotFound)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAddressService_Update_AppliesPartialEdit(t *testing.T) {
	repo := new(MockAddressRepository)
	svc := address.NewService(repo)
	ctx := context.Background()
	userID, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	existing := &address.Address{ID: id, UserID: userID, City: "Pune", State: "MH"}
	repo.On("Get", ctx, userID, id).Return(existing, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(a *address.Address) bool {
		return a.City == "Mumbai" && a.State == "MH" && a.IsDefault
	})).Return(nil).Once()

	city, isDefault := "Mumbai", true
	got, err := svc.Update(ctx, userID, id, address.Update{City: &city, IsDefault: &isDefault})

	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	repo.AssertExpectations(t)
}

func TestAddressService_Delete(t *testing.T) {
	repo := new(MockAddressRepository)
	svc := address.NewService(repo)
	ctx := context.Background()
	userID, id := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())

	repo.On("Delete", ctx, userID, id).Return(address.ErrNotFound).Once()
	assert.ErrorIs(t, svc.Delete(ctx, userID, id), address.ErrNotFound)

	repo.On("Delete", ctx, userID, id).Return(errors.New("boom")).Once()
	err := svc.Delete(ctx, userID, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, address.ErrNotFound)
}
