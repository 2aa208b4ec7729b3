package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarthaksaklani/enakart/internal/db"
	"github.com/sarthaksaklani/enakart/internal/pagination"
)

type Repository interface {
	// Create writes the order, its items, the stock decrements, the coupon
	// redemption and a pending payment in one transaction.
	Create(ctx context.Context, o *Order, usage *CouponUsage) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status Status, page pagination.Params) ([]Order, int, error)
	// ListBySeller returns orders holding sellerID's items, with only those items.
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status Status, page pagination.Params) ([]Order, int, error)
	// Cancel restores stock and flags a refund for paid orders. It reports
	// whether a refund was initiated.
	Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) (bool, error)
	RequestReturn(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const orderColumns = `o.id, o.order_number, o.user_id, o.status, o.order_source, o.subtotal, o.discount_amount,
	o.shipping_amount, o.total_amount, o.coupon_id, o.coupon_code, o.shipping_address, o.payment_method,
	o.payment_status, o.refund_status, o.cancellation_reason, o.cancelled_at, o.delivered_at, o.return_reason,
	o.return_requested_at, o.notes, o.created_at, o.updated_at`

const itemColumns = `id, order_id, product_id, seller_id, product_name, product_image, quantity, unit_price,
	total_price, lens_type, lens_prescription, created_at`

func orderDest(o *Order) []any {
	return []any{
		&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &o.OrderSource, &o.Subtotal, &o.DiscountAmount,
		&o.ShippingAmount, &o.TotalAmount, &o.CouponID, &o.CouponCode, &o.ShippingAddress, &o.PaymentMethod,
		&o.PaymentStatus, &o.RefundStatus, &o.CancellationReason, &o.CancelledAt, &o.DeliveredAt, &o.ReturnReason,
		&o.ReturnRequestedAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	}
}

func (r *repository) Create(ctx context.Context, o *Order, usage *CouponUsage) error {
	if o.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate order id: %w", err)
		}
		o.ID = id
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		queryOrder := `
			INSERT INTO orders (id, order_number, user_id, status, order_source, subtotal, discount_amount,
				shipping_amount, total_amount, coupon_id, coupon_code, shipping_address, payment_method,
				payment_status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`
		_, err := tx.Exec(ctx, queryOrder,
			o.ID, o.OrderNumber, o.UserID, o.Status, o.OrderSource, o.Subtotal, o.DiscountAmount,
			o.ShippingAmount, o.TotalAmount, o.CouponID, o.CouponCode, o.ShippingAddress, o.PaymentMethod,
			o.PaymentStatus, o.Notes, o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order: %w", err)
		}

		queryItem := `
			INSERT INTO order_items (id, order_id, product_id, seller_id, product_name, product_image, quantity,
				unit_price, total_price, lens_type, lens_prescription, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		for i := range o.Items {
			item := &o.Items[i]
			itemID, err := uuid.NewV4()
			if err != nil {
				return fmt.Errorf("repository: failed to generate order item id: %w", err)
			}
			item.ID = itemID
			item.OrderID = o.ID
			item.CreatedAt = now

			_, err = tx.Exec(ctx, queryItem,
				item.ID, item.OrderID, item.ProductID, item.SellerID, item.ProductName, item.ProductImage,
				item.Quantity, item.UnitPrice, item.TotalPrice, item.LensType, item.LensPrescription, item.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
			}

			if err := decrementStock(ctx, tx, item); err != nil {
				return err
			}
		}

		if usage != nil {
			if err := redeemCoupon(ctx, tx, o, usage, now); err != nil {
				return err
			}
		}

		paymentID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate payment id: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO payments (id, order_id, user_id, amount, method, status, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			paymentID, o.ID, o.UserID, o.TotalAmount, o.PaymentMethod, PaymentStatusPending, now,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert payment for order %s: %w", o.ID, err)
		}
		return nil
	})
}

// decrementStock takes item.Quantity units only if that many are on hand.
func decrementStock(ctx context.Context, tx pgx.Tx, item *Item) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW() WHERE id = $1 AND stock_quantity >= $2`,
		item.ProductID, item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to decrement stock for product %s: %w", item.ProductID, err)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	var available int
	if err := tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, item.ProductID).Scan(&available); err != nil {
		return fmt.Errorf("repository: failed to read stock for product %s: %w", item.ProductID, err)
	}
	return &StockError{ProductName: item.ProductName, Available: available, Requested: item.Quantity}
}

// redeemCoupon locks the coupon row before counting, so concurrent orders for
// the same coupon see each other's usage rows. NO KEY UPDATE leaves the key
// share lock taken by the orders.coupon_id foreign key compatible.
func redeemCoupon(ctx context.Context, tx pgx.Tx, o *Order, usage *CouponUsage, now time.Time) error {
	var (
		usageLimit, perUserLimit *int
		usageCount               int
	)
	err := tx.QueryRow(ctx,
		`SELECT usage_limit, usage_count, per_user_limit FROM coupons WHERE id = $1 FOR NO KEY UPDATE`,
		usage.CouponID,
	).Scan(&usageLimit, &usageCount, &perUserLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCouponExhausted
		}
		return fmt.Errorf("repository: failed to lock coupon: %w", err)
	}
	if usageLimit != nil && usageCount >= *usageLimit {
		return ErrCouponExhausted
	}
	if perUserLimit != nil {
		var userUses int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = $1 AND user_id = $2`,
			usage.CouponID, o.UserID,
		).Scan(&userUses)
		if err != nil {
			return fmt.Errorf("repository: failed to count coupon usage: %w", err)
		}
		if userUses >= *perUserLimit {
			return ErrCouponExhausted
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE coupons SET usage_count = usage_count + 1 WHERE id = $1`, usage.CouponID); err != nil {
		return fmt.Errorf("repository: failed to increment coupon usage: %w", err)
	}

	usageID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate coupon usage id: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO coupon_usage (id, coupon_id, user_id, order_id, discount_amount, used_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		usageID, usage.CouponID, o.UserID, o.ID, usage.DiscountAmount, now,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to record coupon usage: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id).Scan(orderDest(&o)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{id}, nil)
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []Item{}
	}
	return &o, nil
}

// itemsFor loads the items of orderIDs grouped by order, optionally only
// those sold by sellerID.
func (r *repository) itemsFor(ctx context.Context, orderIDs []uuid.UUID, sellerID *uuid.UUID) (map[uuid.UUID][]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = ANY($1)`
	args := []any{orderIDs}
	if sellerID != nil {
		query += ` AND seller_id = $2`
		args = append(args, *sellerID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[uuid.UUID][]Item, len(orderIDs))
	for rows.Next() {
		var it Item
		err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.SellerID, &it.ProductName, &it.ProductImage, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice, &it.LensType, &it.LensPrescription, &it.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return byOrder, nil
}

func (r *repository) listOrders(ctx context.Context, query string, args []any, sellerID *uuid.UUID) ([]Order, int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	total := 0
	for rows.Next() {
		var o Order
		if err := rows.Scan(append(orderDest(&o), &total)...); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, total, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := r.itemsFor(ctx, ids, sellerID)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []Item{}
		}
	}
	return orders, total, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, status Status, page pagination.Params) ([]Order, int, error) {
	query := `SELECT ` + orderColumns + `, COUNT(*) OVER() FROM orders o
		WHERE o.user_id = $1 AND ($2 = '' OR o.status = $2)
		ORDER BY o.created_at DESC
		LIMIT $3 OFFSET $4`
	return r.listOrders(ctx, query, []any{userID, string(status), page.Limit, page.Offset()}, nil)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status Status, page pagination.Params) ([]Order, int, error) {
	query := `SELECT ` + orderColumns + `, COUNT(*) OVER() FROM orders o
		WHERE EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id AND oi.seller_id = $1)
			AND ($2 = '' OR o.status = $2)
		ORDER BY o.created_at DESC
		LIMIT $3 OFFSET $4`
	return r.listOrders(ctx, query, []any{sellerID, string(status), page.Limit, page.Offset()}, &sellerID)
}

func (r *repository) Cancel(ctx context.Context, id uuid.UUID, reason *string, at time.Time) (bool, error) {
	refund := false
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			status        Status
			paymentStatus string
		)
		err := tx.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status, &paymentStatus)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("repository: failed to lock order %s: %w", id, err)
		}
		if !CanCancel(status) {
			return &StatusError{Action: "cancelled", Status: status}
		}

		refund = paymentStatus == PaymentStatusPaid
		var refundStatus *string
		if refund {
			s := RefundPending
			refundStatus = &s
		}

		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET status = $1, cancellation_reason = $2, cancelled_at = $3, refund_status = COALESCE($4, refund_status), updated_at = $3
			WHERE id = $5`,
			StatusCancelled, reason, at, refundStatus, id,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to cancel order %s: %w", id, err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE products p
			SET stock_quantity = p.stock_quantity + oi.qty, updated_at = $2
			FROM (SELECT product_id, SUM(quantity) AS qty FROM order_items WHERE order_id = $1 GROUP BY product_id) oi
			WHERE p.id = oi.product_id`,
			id, at,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to restore stock for order %s: %w", id, err)
		}
		return nil
	})
	return refund, err
}

func (r *repository) RequestReturn(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $1, return_reason = $2, return_requested_at = $3, updated_at = $3
		WHERE id = $4 AND status = $5`,
		StatusReturnRequested, reason, at, id, StatusDelivered,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to request return for order %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotReturnable
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE orders
			SET status = $1,
				updated_at = $2,
				delivered_at = CASE WHEN $1 = 'delivered' THEN $2 ELSE delivered_at END,
				payment_status = CASE WHEN $1 = 'delivered' AND payment_method = 'cod' THEN 'paid' ELSE payment_status END
			WHERE id = $3 AND status = $4`,
			to, at, id, from,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to update order status %s: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			// Changed by someone else since it was read.
			return ErrInvalidStatusTransition
		}

		if to == StatusDelivered {
			_, err = tx.Exec(ctx, `
				UPDATE payments p SET status = 'paid', paid_at = $2
				FROM orders o
				WHERE p.order_id = o.id AND o.id = $1 AND o.payment_method = 'cod' AND p.status = 'pending'`,
				id, at,
			)
			if err != nil {
				return fmt.Errorf("repository: failed to settle cod payment for order %s: %w", id, err)
			}
		}
		return nil
	})
}
