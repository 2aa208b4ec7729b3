package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	CountUserUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	ListAvailable(ctx context.Context, now time.Time) ([]Coupon, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const couponColumns = `id, code, description, discount_type, discount_value, min_order_amount, max_discount_amount,
	usage_limit, usage_count, per_user_limit, valid_from, valid_until, is_active, created_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	var c Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount, &c.MaxDiscountAmount,
		&c.UsageLimit, &c.UsageCount, &c.PerUserLimit, &c.ValidFrom, &c.ValidUntil, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE UPPER(code) = $1 AND is_active = TRUE`
	c, err := scanCoupon(r.db.QueryRow(ctx, query, strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon: %w", err)
	}
	return c, nil
}

func (r *repository) CountUserUsage(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coupon_usage WHERE coupon_id = $1 AND user_id = $2`, couponID, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to count coupon usage: %w", err)
	}
	return n, nil
}

func (r *repository) ListAvailable(ctx context.Context, now time.Time) ([]Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
		WHERE is_active = TRUE
			AND valid_from <= $1
			AND (valid_until IS NULL OR valid_until >= $1)
			AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]Coupon, 0)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating coupons: %w", err)
	}
	return coupons, nil
}
