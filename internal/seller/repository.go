package seller

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sarthaksaklani/enakart/internal/pagination"
)

type InventoryCounts struct {
	TotalProducts    int `db:"total_products"`
	LowStockProducts int `db:"low_stock_products"`
}

type Repository interface {
	SaleLines(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]SaleLine, error)
	InventoryCounts(ctx context.Context, sellerID uuid.UUID) (InventoryCounts, error)
	Payments(ctx context.Context, sellerID uuid.UUID, paymentStatus string, page pagination.Params) ([]PaymentRow, int, error)
	PaymentGroups(ctx context.Context, sellerID uuid.UUID) ([]PaymentGroup, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaleLines(ctx context.Context, sellerID uuid.UUID, from, to time.Time) ([]SaleLine, error) {
	query := `
		SELECT oi.order_id, o.status AS order_status, oi.product_id, oi.product_name,
			oi.quantity, oi.total_price::float8 AS total_price, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.seller_id = $1 AND o.created_at >= $2 AND o.created_at < $3
		ORDER BY o.created_at
	`
	lines := make([]SaleLine, 0)
	if err := r.db.SelectContext(ctx, &lines, query, sellerID, from, to); err != nil {
		return nil, fmt.Errorf("repository: failed to select sale lines for seller %s: %w", sellerID, err)
	}
	return lines, nil
}

func (r *repository) InventoryCounts(ctx context.Context, sellerID uuid.UUID) (InventoryCounts, error) {
	query := `
		SELECT COUNT(*) AS total_products,
			COUNT(*) FILTER (WHERE stock_quantity <= low_stock_threshold) AS low_stock_products
		FROM products
		WHERE seller_id = $1 AND is_active = TRUE
	`
	var c InventoryCounts
	if err := r.db.GetContext(ctx, &c, query, sellerID); err != nil {
		return InventoryCounts{}, fmt.Errorf("repository: failed to count inventory for seller %s: %w", sellerID, err)
	}
	return c, nil
}

const sellerOrders = `
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id AND oi.seller_id = $1
`

func (r *repository) Payments(ctx context.Context, sellerID uuid.UUID, paymentStatus string, page pagination.Params) ([]PaymentRow, int, error) {
	query := `
		SELECT o.id AS order_id, o.order_number, o.status AS order_status, o.payment_method,
			o.payment_status, o.refund_status, SUM(oi.total_price)::float8 AS amount,
			SUM(oi.quantity) AS items, o.created_at
	` + sellerOrders + `
		WHERE ($2::text = '' OR o.payment_status = $2)
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows := make([]PaymentRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query, sellerID, paymentStatus, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to select payments for seller %s: %w", sellerID, err)
	}

	var total int
	countQuery := `SELECT COUNT(DISTINCT o.id)` + sellerOrders + ` WHERE ($2::text = '' OR o.payment_status = $2)`
	if err := r.db.GetContext(ctx, &total, countQuery, sellerID, paymentStatus); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count payments for seller %s: %w", sellerID, err)
	}
	return rows, total, nil
}

func (r *repository) PaymentGroups(ctx context.Context, sellerID uuid.UUID) ([]PaymentGroup, error) {
	query := `
		SELECT o.status AS order_status, o.payment_status, (o.refund_status IS NOT NULL) AS refunding,
			SUM(oi.total_price)::float8 AS amount
	` + sellerOrders + `
		GROUP BY o.status, o.payment_status, (o.refund_status IS NOT NULL)
	`
	groups := make([]PaymentGroup, 0)
	if err := r.db.SelectContext(ctx, &groups, query, sellerID); err != nil {
		return nil, fmt.Errorf("repository: failed to summarise payments for seller %s: %w", sellerID, err)
	}
	return groups, nil
}
