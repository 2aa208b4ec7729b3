package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarthaksaklani/enakart/internal/db"
)

var (
	ErrNotFound          = errors.New("product not in wishlist")
	ErrAlreadyInWishlist = errors.New("product already in wishlist")
	ErrProductNotFound   = errors.New("product not found")
)

// Entry is a wishlist row with a summary of the product.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	Product   Product   `json:"product"`
}

type Product struct {
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Images        []string `json:"images"`
	Rating        float64  `json:"rating"`
	StockQuantity int      `json:"stock_quantity"`
	IsActive      bool     `json:"is_active"`
}

type Repository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*Entry, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT w.id, w.product_id, w.created_at,
			p.name, p.brand, p.price, p.original_price, p.images, p.rating, p.stock_quantity, p.is_active
		FROM wishlist w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query wishlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.ProductID,
			&e.CreatedAt,
			&e.Product.Name,
			&e.Product.Brand,
			&e.Product.Price,
			&e.Product.OriginalPrice,
			&e.Product.Images,
			&e.Product.Rating,
			&e.Product.StockQuantity,
			&e.Product.IsActive,
		); err != nil {
			return nil, fmt.Errorf("repository: failed to scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating wishlist: %w", err)
	}
	return entries, nil
}

func (r *repository) Add(ctx context.Context, userID, productID uuid.UUID) (*Entry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to generate wishlist id: %w", err)
	}
	e := &Entry{ID: id, ProductID: productID, CreatedAt: time.Now().UTC()}

	_, err = r.db.Exec(ctx,
		`INSERT INTO wishlist (id, user_id, product_id, created_at) VALUES ($1, $2, $3, $4)`,
		e.ID, userID, productID, e.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyInWishlist
		}
		if db.IsForeignKeyViolation(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to insert wishlist entry: %w", err)
	}
	return e, nil
}

func (r *repository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM wishlist WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete wishlist entry: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
