package wishlist_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/db/dbtest"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

func TestRepository_AddDuplicate(t *testing.T) {
	pg := dbtest.Open(t)
	dbtest.Truncate(t, pg, "wishlist", "products", "users")

	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	dbtest.Exec(t, pg, `INSERT INTO users (id, phone, role) VALUES ($1, '9000000001', 'seller')`, userID)
	dbtest.Exec(t, pg, `INSERT INTO products (id, seller_id, name, price, stock_quantity) VALUES ($1, $2, 'Aviator', 1200, 3)`,
		productID, userID)

	repo := wishlist.NewRepository(pg.Pool)

	_, err := repo.Add(ctx, userID, productID)
	require.NoError(t, err)

	_, err = repo.Add(ctx, userID, productID)
	assert.ErrorIs(t, err, wishlist.ErrAlreadyInWishlist)

	entries, err := repo.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Aviator", entries[0].Product.Name)

	require.NoError(t, repo.Remove(ctx, userID, productID))
	assert.ErrorIs(t, repo.Remove(ctx, userID, productID), wishlist.ErrNotFound)
}
