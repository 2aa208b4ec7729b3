package order_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarthaksaklani/enakart/internal/db"
	"github.com/sarthaksaklani/enakart/internal/db/dbtest"
	"github.com/sarthaksaklani/enakart/internal/order"
)

type orderFixture struct {
	pg       *db.Postgres
	buyerID  uuid.UUID
	sellerID uuid.UUID
	frameID  uuid.UUID
	lensID   uuid.UUID
}

func seedOrderFixture(t *testing.T) orderFixture {
	pg := dbtest.Open(t)
	dbtest.Truncate(t, pg, "payments", "coupon_usage", "order_items", "orders", "products", "users")

	f := orderFixture{
		pg:       pg,
		buyerID:  uuid.Must(uuid.NewV4()),
		sellerID: uuid.Must(uuid.NewV4()),
		frameID:  uuid.Must(uuid.NewV4()),
		lensID:   uuid.Must(uuid.NewV4()),
	}
	dbtest.Exec(t, pg, `INSERT INTO users (id, phone, role) VALUES ($1, '9000000010', 'customer'), ($2, '9000000011', 'seller')`,
		f.buyerID, f.sellerID)
	dbtest.Exec(t, pg, `INSERT INTO products (id, seller_id, name, price, stock_quantity) VALUES
		($1, $3, 'Round Frame', 1500, 5),
		($2, $3, 'Blue Cut Lens', 800, 1)`, f.frameID, f.lensID, f.sellerID)
	return f
}

func (f orderFixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, f.pg.Pool.QueryRow(context.Background(), `SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&n))
	return n
}

func (f orderFixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.pg.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func (f orderFixture) newOrder(number string, frameQty, lensQty int) *order.Order {
	o := &order.Order{
		OrderNumber:     number,
		UserID:          f.buyerID,
		Status:          order.StatusPending,
		OrderSource:     order.SourceCustomer,
		ShippingAddress: order.ShippingAddress{FullName: "Asha", Phone: "9000000010", AddressLine1: "1 MG Road", City: "Pune", State: "MH", PostalCode: "411001", Country: "India"},
		PaymentMethod:   order.PaymentCOD,
		PaymentStatus:   order.PaymentStatusPending,
	}
	o.Items = append(o.Items, order.Item{ProductID: f.frameID, SellerID: f.sellerID, ProductName: "Round Frame", Quantity: frameQty, UnitPrice: 1500, TotalPrice: 1500 * float64(frameQty)})
	if lensQty > 0 {
		o.Items = append(o.Items, order.Item{ProductID: f.lensID, SellerID: f.sellerID, ProductName: "Blue Cut Lens", Quantity: lensQty, UnitPrice: 800, TotalPrice: 800 * float64(lensQty)})
	}
	for _, it := range o.Items {
		o.Subtotal += it.TotalPrice
	}
	o.TotalAmount = o.Subtotal
	return o
}

func TestRepository_CreateRollsBackOnShortStock(t *testing.T) {
	f := seedOrderFixture(t)
	repo := order.NewRepository(f.pg.Pool)

	err := repo.Create(context.Background(), f.newOrder("ORD-TEST-0001", 2, 3), nil)

	var stockErr *order.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Blue Cut Lens", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	assert.Equal(t, 0, f.count(t, "orders"))
	assert.Equal(t, 0, f.count(t, "order_items"))
	assert.Equal(t, 0, f.count(t, "payments"))
	assert.Equal(t, 5, f.stock(t, f.frameID), "earlier decrement must be rolled back")
	assert.Equal(t, 1, f.stock(t, f.lensID))
}

func TestRepository_CreateAndCancelRestoresStock(t *testing.T) {
	f := seedOrderFixture(t)
	repo := order.NewRepository(f.pg.Pool)
	ctx := context.Background()

	o := f.newOrder("ORD-TEST-0002", 2, 1)
	require.NoError(t, repo.Create(ctx, o, nil))
	assert.Equal(t, 3, f.stock(t, f.frameID))
	assert.Equal(t, 0, f.stock(t, f.lensID))
	assert.Equal(t, 1, f.count(t, "payments"))

	stored, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-TEST-0002", stored.OrderNumber)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, "Pune", stored.ShippingAddress.City)

	reason := "ordered twice"
	refund, err := repo.Cancel(ctx, o.ID, &reason, time.Now())
	require.NoError(t, err)
	assert.False(t, refund, "unpaid orders need no refund")

	assert.Equal(t, 5, f.stock(t, f.frameID))
	assert.Equal(t, 1, f.stock(t, f.lensID))

	stored, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, stored.Status)
	require.NotNil(t, stored.CancellationReason)
	assert.Equal(t, reason, *stored.CancellationReason)
}

func TestRepository_CreateEnforcesPerUserCouponLimitConcurrently(t *testing.T) {
	f := seedOrderFixture(t)
	dbtest.Truncate(t, f.pg, "coupons")
	repo := order.NewRepository(f.pg.Pool)
	ctx := context.Background()

	couponID := uuid.Must(uuid.NewV4())
	dbtest.Exec(t, f.pg, `INSERT INTO coupons (id, code, discount_type, discount_value, usage_limit, per_user_limit)
		VALUES ($1, 'ONCE100', 'fixed', 100, 10, 1)`, couponID)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := f.newOrder("ORD-TEST-010"+string(rune('0'+i)), 1, 0)
			code := "ONCE100"
			o.CouponID, o.CouponCode = &couponID, &code
			o.DiscountAmount = 100
			o.TotalAmount -= 100
			errs[i] = repo.Create(ctx, o, &order.CouponUsage{CouponID: couponID, DiscountAmount: 100})
		}(i)
	}
	wg.Wait()

	var succeeded, exhausted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, order.ErrCouponExhausted):
			exhausted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, 1, f.count(t, "coupon_usage"))
	assert.Equal(t, 4, f.stock(t, f.frameID), "losing order must not keep its stock decrement")
}
