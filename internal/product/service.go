package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/pagination"
	"github.com/sarthaksaklani/enakart/internal/user"
)

var ErrInvalidProduct = errors.New("invalid product")

type Service interface {
	ListProducts(ctx context.Context, f Filter, viewer user.Role) ([]Product, pagination.Meta, error)
	GetProduct(ctx context.Context, id uuid.UUID, viewer user.Role) (*Product, error)
	ListCategories(ctx context.Context) ([]Category, error)

	ListSellerProducts(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]Product, pagination.Meta, error)
	GetSellerProduct(ctx context.Context, sellerID, id uuid.UUID) (*Product, error)
	CreateProduct(ctx context.Context, sellerID uuid.UUID, p *Product) error
	UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, u Update) (*Product, error)
	DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error

	Inventory(ctx context.Context, sellerID uuid.UUID) (Inventory, error)
	UpdateStock(ctx context.Context, sellerID, id uuid.UUID, quantity int) (*Product, error)
}

type service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) Service {
	if cache == nil {
		cache = NoopCache()
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) ListProducts(ctx context.Context, f Filter, viewer user.Role) ([]Product, pagination.Meta, error) {
	f.IncludeInactive = false

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, pagination.Meta{}, fmt.Errorf("service: failed to list products: %w", err)
	}

	for i := range products {
		products[i] = products[i].forViewer(viewer)
	}
	return products, f.Page.Meta(total), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID, viewer user.Role) (*Product, error) {
	p, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", id).Msg("service: product cache read failed")
	}

	if p == nil {
		p, err = s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, ErrNotFound
			}
			log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product")
			return nil, fmt.Errorf("service: failed to get product '%s': %w", id, err)
		}
		if p.IsActive {
			if err := s.cache.Set(ctx, p); err != nil {
				log.Warn().Err(err).Stringer("product_id", id).Msg("service: product cache write failed")
			}
		}
	}

	if !p.IsActive {
		return nil, ErrNotFound
	}

	view := p.forViewer(viewer)
	return &view, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) ListSellerProducts(ctx context.Context, sellerID uuid.UUID, page pagination.Params) ([]Product, pagination.Meta, error) {
	f := Filter{SellerID: &sellerID, IncludeInactive: true, Sort: SortNewest, Page: page}

	products, total, err := s.repo.List(ctx, f)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list seller products")
		return nil, pagination.Meta{}, fmt.Errorf("service: failed to list seller products: %w", err)
	}
	for i := range products {
		products[i] = products[i].forViewer(user.RoleSeller)
	}
	return products, page.Meta(total), nil
}

// owned loads a product straight from the store and checks that sellerID owns it.
func (s *service) owned(ctx context.Context, sellerID, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to get product")
		return nil, fmt.Errorf("service: failed to get product '%s': %w", id, err)
	}
	if p.SellerID != sellerID {
		return nil, ErrNotOwner
	}
	return p, nil
}

func (s *service) GetSellerProduct(ctx context.Context, sellerID, id uuid.UUID) (*Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	view := p.forViewer(user.RoleSeller)
	return &view, nil
}

func validate(p *Product) error {
	switch {
	case p.Price <= 0:
		return fmt.Errorf("%w: price must be greater than 0", ErrInvalidProduct)
	case p.StockQuantity < 0:
		return fmt.Errorf("%w: stock_quantity cannot be negative", ErrInvalidProduct)
	case p.ResellerPrice != nil && *p.ResellerPrice < 0:
		return fmt.Errorf("%w: reseller_price cannot be negative", ErrInvalidProduct)
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, p *Product) error {
	p.SellerID = sellerID
	if p.ProductType == "" {
		p.ProductType = "eyeglasses"
	}
	if p.Gender == "" {
		p.Gender = "unisex"
	}
	if p.LowStockThreshold == 0 {
		p.LowStockThreshold = 5
	}
	if err := validate(p); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to create product")
		return fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Stringer("seller_id", sellerID).Msg("service: product created")
	return nil
}

func (s *service) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, u Update) (*Product, error) {
	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	u.apply(p)
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCategoryNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product '%s': %w", id, err)
	}
	s.invalidate(ctx, id)

	view := p.forViewer(user.RoleSeller)
	return &view, nil
}

func (s *service) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	if _, err := s.owned(ctx, sellerID, id); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to deactivate product")
		return fmt.Errorf("service: failed to delete product '%s': %w", id, err)
	}
	s.invalidate(ctx, id)

	log.Info().Stringer("product_id", id).Msg("service: product deactivated")
	return nil
}

func (s *service) Inventory(ctx context.Context, sellerID uuid.UUID) (Inventory, error) {
	products, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to load inventory")
		return Inventory{}, fmt.Errorf("service: failed to load inventory: %w", err)
	}
	return BuildInventory(products), nil
}

func (s *service) UpdateStock(ctx context.Context, sellerID, id uuid.UUID, quantity int) (*Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: stock_quantity cannot be negative", ErrInvalidProduct)
	}

	p, err := s.owned(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStock(ctx, id, quantity); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to update stock")
		return nil, fmt.Errorf("service: failed to update stock for '%s': %w", id, err)
	}
	s.invalidate(ctx, id)

	p.StockQuantity = quantity
	view := p.forViewer(user.RoleSeller)
	return &view, nil
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Stringer("product_id", id).Msg("service: product cache invalidation failed")
	}
}
