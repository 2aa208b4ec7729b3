package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repository interface {
	// EnsureCart returns the id of the user's cart, creating it on first use.
	EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]Item, error)
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*Item, error)
	// FindPlainItem returns the line for productID that carries no prescription.
	FindPlainItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error)
	AddItem(ctx context.Context, item *Item) error
	UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `
	ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.lens_type, ci.lens_prescription, ci.created_at, ci.updated_at,
	p.id, p.seller_id, p.name, p.brand, p.images, p.price, p.reseller_price, p.stock_quantity, p.is_active`

const itemFrom = `
	FROM cart_items ci
	JOIN cart c ON c.id = ci.cart_id
	JOIN products p ON p.id = ci.product_id`

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(
		&i.ID, &i.CartID, &i.ProductID, &i.Quantity, &i.LensType, &i.LensPrescription, &i.CreatedAt, &i.UpdatedAt,
		&i.Product.ID, &i.Product.SellerID, &i.Product.Name, &i.Product.Brand, &i.Product.Images,
		&i.Product.Price, &i.Product.ResellerPrice, &i.Product.StockQuantity, &i.Product.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *repository) EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate cart id: %w", err)
	}

	query := `
		INSERT INTO cart (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	var cartID uuid.UUID
	if err := r.db.QueryRow(ctx, query, id, userID).Scan(&cartID); err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to ensure cart for user %s: %w", userID, err)
	}
	return cartID, nil
}

func (r *repository) ListItems(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT`+itemColumns+itemFrom+` WHERE c.user_id = $1 ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating cart items: %w", err)
	}
	return items, nil
}

func (r *repository) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*Item, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT`+itemColumns+itemFrom+` WHERE ci.id = $1 AND c.user_id = $2`, itemID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart item %s: %w", itemID, err)
	}
	return item, nil
}

func (r *repository) FindPlainItem(ctx context.Context, cartID, productID uuid.UUID) (*Item, error) {
	query := `SELECT` + itemColumns + itemFrom + `
		WHERE ci.cart_id = $1 AND ci.product_id = $2 AND ci.lens_prescription IS NULL
		ORDER BY ci.created_at LIMIT 1`
	item, err := scanItem(r.db.QueryRow(ctx, query, cartID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart item for product %s: %w", productID, err)
	}
	return item, nil
}

func (r *repository) AddItem(ctx context.Context, item *Item) error {
	if item.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate cart item id: %w", err)
		}
		item.ID = id
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, lens_type, lens_prescription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.LensType, item.LensPrescription, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert cart item: %w", err)
	}
	return nil
}

func (r *repository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	query := `
		DELETE FROM cart_items ci
		USING cart c
		WHERE ci.cart_id = c.id AND ci.id = $1 AND c.user_id = $2
	`
	cmdTag, err := r.db.Exec(ctx, query, itemID, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM cart WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
