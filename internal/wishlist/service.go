package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/product"
)

type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*Entry, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list wishlist")
		return nil, fmt.Errorf("service: failed to list wishlist: %w", err)
	}
	return entries, nil
}

func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) (*Entry, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to load product: %w", err)
	}

	e, err := s.repo.Add(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, ErrAlreadyInWishlist) || errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("user_id", userID).Stringer("product_id", productID).Msg("service: failed to add to wishlist")
		return nil, fmt.Errorf("service: failed to add to wishlist: %w", err)
	}

	e.Product = Product{
		Name:          p.Name,
		Brand:         p.Brand,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Images:        p.Images,
		Rating:        p.Rating,
		StockQuantity: p.StockQuantity,
		IsActive:      p.IsActive,
	}
	return e, nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to remove from wishlist")
		return fmt.Errorf("service: failed to remove from wishlist: %w", err)
	}
	return nil
}
