package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sarthaksaklani/enakart/internal/db"
	"github.com/sarthaksaklani/enakart/internal/pagination"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrNotOwner         = errors.New("product belongs to another seller")
	ErrCategoryNotFound = errors.New("category not found")
)

type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortRating    Sort = "rating"
	SortPopular   Sort = "popular"
)

var sortClauses = map[Sort]string{
	SortNewest:    "p.created_at DESC, p.id",
	SortPriceAsc:  "p.price ASC, p.id",
	SortPriceDesc: "p.price DESC, p.id",
	SortRating:    "p.rating DESC, p.review_count DESC, p.id",
	SortPopular:   "p.review_count DESC, p.rating DESC, p.id",
}

type Filter struct {
	CategorySlug string
	Brand        string
	Gender       string
	FrameShape   string
	ProductType  string
	MinPrice     *float64
	MaxPrice     *float64
	Search       string
	InStock      bool
	Featured     bool
	SellerID     *uuid.UUID
	// IncludeInactive is only set for a seller listing their own catalogue.
	IncludeInactive bool
	Sort            Sort
	Page            pagination.Params
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const productColumns = `
	p.id, p.seller_id, p.category_id, c.name, c.slug, p.name, p.description, p.brand, p.product_type,
	p.gender, p.frame_shape, p.frame_material, p.frame_color, p.price, p.original_price, p.reseller_price,
	p.stock_quantity, p.low_stock_threshold, p.images, p.is_active, p.is_featured, p.rating, p.review_count,
	p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

func scanDest(p *Product) []any {
	return []any{
		&p.ID, &p.SellerID, &p.CategoryID, &p.CategoryName, &p.CategorySlug, &p.Name, &p.Description,
		&p.Brand, &p.ProductType, &p.Gender, &p.FrameShape, &p.FrameMaterial, &p.FrameColor, &p.Price,
		&p.OriginalPrice, &p.ResellerPrice, &p.StockQuantity, &p.LowStockThreshold, &p.Images,
		&p.IsActive, &p.IsFeatured, &p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
	}
}

// buildListQuery renders the catalogue query for f. The total match count is
// returned alongside every row through a window function.
func buildListQuery(f Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeInactive {
		where = append(where, "p.is_active = TRUE")
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.Brand != "" {
		add("p.brand ILIKE $%d", f.Brand)
	}
	if f.Gender != "" {
		add("p.gender = $%d", f.Gender)
	}
	if f.FrameShape != "" {
		add("p.frame_shape ILIKE $%d", f.FrameShape)
	}
	if f.ProductType != "" {
		add("p.product_type = $%d", f.ProductType)
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d OR p.description ILIKE $%d)", n, n, n))
	}
	if f.InStock {
		where = append(where, "p.stock_quantity > 0")
	}
	if f.Featured {
		where = append(where, "p.is_featured = TRUE")
	}
	if f.SellerID != nil {
		add("p.seller_id = $%d", *f.SellerID)
	}

	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses[SortNewest]
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(productColumns)
	b.WriteString(", COUNT(*) OVER() AS total")
	b.WriteString(productFrom)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)

	args = append(args, f.Page.Limit, f.Page.Offset())
	fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return b.String(), args
}

func (r *repository) List(ctx context.Context, f Filter) ([]Product, int, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, f.Page.Limit)
	total := 0
	for rows.Next() {
		var p Product
		if err := rows.Scan(append(scanDest(&p), &total)...); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: failed iterating products: %w", err)
	}

	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT`+productColumns+productFrom+` WHERE p.id = $1`, id).Scan(scanDest(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", id, err)
	}
	return &p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.queryProducts(ctx, `SELECT`+productColumns+productFrom+` WHERE p.id = ANY($1)`, ids)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]Product, error) {
	return r.queryProducts(ctx,
		`SELECT`+productColumns+productFrom+` WHERE p.seller_id = $1 AND p.is_active = TRUE ORDER BY p.stock_quantity ASC, p.name`,
		sellerID)
}

func (r *repository) queryProducts(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(scanDest(&p)...); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating products: %w", err)
	}
	return products, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, description, parent_id, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: failed iterating categories: %w", err)
	}
	return categories, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate product id: %w", err)
		}
		p.ID = id
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Images == nil {
		p.Images = []string{}
	}

	query := `
		INSERT INTO products (id, seller_id, category_id, name, description, brand, product_type, gender,
			frame_shape, frame_material, frame_color, price, original_price, reseller_price, stock_quantity,
			low_stock_threshold, images, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.SellerID, p.CategoryID, p.Name, p.Description, p.Brand, p.ProductType, p.Gender,
		p.FrameShape, p.FrameMaterial, p.FrameColor, p.Price, p.OriginalPrice, p.ResellerPrice, p.StockQuantity,
		p.LowStockThreshold, p.Images, p.IsActive, p.IsFeatured, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, brand = $4, product_type = $5, gender = $6,
			frame_shape = $7, frame_material = $8, frame_color = $9, price = $10, original_price = $11,
			reseller_price = $12, stock_quantity = $13, low_stock_threshold = $14, images = $15,
			is_active = $16, is_featured = $17, updated_at = $18
		WHERE id = $19
	`
	cmdTag, err := r.db.Exec(ctx, query,
		p.CategoryID, p.Name, p.Description, p.Brand, p.ProductType, p.Gender,
		p.FrameShape, p.FrameMaterial, p.FrameColor, p.Price, p.OriginalPrice,
		p.ResellerPrice, p.StockQuantity, p.LowStockThreshold, p.Images,
		p.IsActive, p.IsFeatured, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("repository: failed to update product %s: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE products SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("repository: failed to set product %s active=%t: %w", id, active, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update stock for product %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
