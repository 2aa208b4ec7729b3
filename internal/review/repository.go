package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarthaksaklani/enakart/internal/db"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
)

type Repository interface {
	ListApproved(ctx context.Context, productID uuid.UUID) ([]Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	// DeliveredOrderWith returns the latest delivered order of userID that
	// contains productID, or nil when there is none.
	DeliveredOrderWith(ctx context.Context, userID, productID uuid.UUID) (*uuid.UUID, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const reviewColumns = `
	r.id, r.product_id, r.user_id, r.order_id, u.full_name, r.rating, r.title, r.comment,
	r.is_verified_purchase, r.is_approved, r.helpful_count, r.created_at, r.updated_at`

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.OrderID,
		&rv.ReviewerName,
		&rv.Rating,
		&rv.Title,
		&rv.Comment,
		&rv.IsVerifiedPurchase,
		&rv.IsApproved,
		&rv.HelpfulCount,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repository) ListApproved(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	query := `SELECT` + reviewColumns + `
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.is_approved = TRUE
		ORDER BY r.created_at DESC`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query reviews for product %s: %w", productID, err)
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating reviews: %w", err)
	}
	return reviews, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := `SELECT` + reviewColumns + ` FROM reviews r LEFT JOIN users u ON u.id = r.user_id WHERE r.id = $1`
	rv, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select review by id %s: %w", id, err)
	}
	return rv, nil
}

func (r *repository) Create(ctx context.Context, rv *Review) error {
	if rv.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate review id: %w", err)
		}
		rv.ID = id
	}
	now := time.Now().UTC()
	rv.CreatedAt = now
	rv.UpdatedAt = now

	query := `
		INSERT INTO reviews (id, product_id, user_id, order_id, rating, title, comment,
			is_verified_purchase, is_approved, helpful_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $10)
	`
	_, err := r.db.Exec(ctx, query,
		rv.ID,
		rv.ProductID,
		rv.UserID,
		rv.OrderID,
		rv.Rating,
		rv.Title,
		rv.Comment,
		rv.IsVerifiedPurchase,
		rv.IsApproved,
		now,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("repository: failed to insert review: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	rv.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET rating = $1, title = $2, comment = $3, is_approved = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`
	cmdTag, err := r.db.Exec(ctx, query, rv.Rating, rv.Title, rv.Comment, rv.IsApproved, rv.UpdatedAt, rv.ID, rv.UserID)
	if err != nil {
		return fmt.Errorf("repository: failed to update review %s: %w", rv.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeliveredOrderWith(ctx context.Context, userID, productID uuid.UUID) (*uuid.UUID, error) {
	query := `
		SELECT o.id
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'delivered'
		ORDER BY o.delivered_at DESC NULLS LAST
		LIMIT 1
	`
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, userID, productID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("repository: failed to look up delivered order: %w", err)
	}
	return &id, nil
}
