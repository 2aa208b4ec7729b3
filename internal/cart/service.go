package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/user"
)

var (
	ErrProductUnavailable = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// ProductLookup is the part of the catalogue the cart needs.
type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type AddItemInput struct {
	ProductID        uuid.UUID
	Quantity         int
	LensType         *string
	LensPrescription *Prescription
}

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID, role user.Role) (*Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, role user.Role, in AddItemInput) (*Item, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, role user.Role, itemID uuid.UUID, quantity int) (*Item, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID, role user.Role) (*Cart, error) {
	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to ensure cart")
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list cart items")
		return nil, fmt.Errorf("service: failed to get cart: %w", err)
	}

	return build(cartID, userID, items, role), nil
}

func (s *service) activeProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("service: failed to load product '%s': %w", id, err)
	}
	if !p.IsActive {
		return nil, ErrProductUnavailable
	}
	return p, nil
}

func stockError(p *product.Product) error {
	return fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, p.StockQuantity, p.Name)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, role user.Role, in AddItemInput) (*Item, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if err := in.LensPrescription.Validate(); err != nil {
		return nil, err
	}

	p, err := s.activeProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p.StockQuantity < in.Quantity {
		return nil, stockError(p)
	}

	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to ensure cart")
		return nil, fmt.Errorf("service: failed to add cart item: %w", err)
	}

	if in.LensPrescription == nil {
		existing, err := s.repo.FindPlainItem(ctx, cartID, p.ID)
		switch {
		case err == nil:
			quantity := existing.Quantity + in.Quantity
			if p.StockQuantity < quantity {
				return nil, stockError(p)
			}
			if err := s.repo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
				log.Error().Err(err).Stringer("item_id", existing.ID).Msg("service: failed to merge cart item")
				return nil, fmt.Errorf("service: failed to add cart item: %w", err)
			}
			existing.Quantity = quantity
			existing.Price(role)
			return existing, nil
		case !errors.Is(err, ErrItemNotFound):
			log.Error().Err(err).Stringer("cart_id", cartID).Msg("service: failed to look up cart item")
			return nil, fmt.Errorf("service: failed to add cart item: %w", err)
		}
	}

	item := &Item{
		CartID:           cartID,
		ProductID:        p.ID,
		Quantity:         in.Quantity,
		LensType:         in.LensType,
		LensPrescription: in.LensPrescription,
		Product: ProductSummary{
			ID:            p.ID,
			SellerID:      p.SellerID,
			Name:          p.Name,
			Brand:         p.Brand,
			Images:        p.Images,
			Price:         p.Price,
			ResellerPrice: p.ResellerPrice,
			StockQuantity: p.StockQuantity,
			IsActive:      p.IsActive,
		},
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		log.Error().Err(err).Stringer("cart_id", cartID).Msg("service: failed to insert cart item")
		return nil, fmt.Errorf("service: failed to add cart item: %w", err)
	}
	item.Price(role)
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, role user.Role, itemID uuid.UUID, quantity int) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.repo.GetItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("service: failed to load cart item '%s': %w", itemID, err)
	}

	if item.Product.StockQuantity < quantity {
		return nil, fmt.Errorf("%w: only %d of %s available", ErrInsufficientStock, item.Product.StockQuantity, item.Product.Name)
	}

	if err := s.repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("service: failed to update cart item")
		return nil, fmt.Errorf("service: failed to update cart item '%s': %w", itemID, err)
	}

	item.Quantity = quantity
	item.Price(role)
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.repo.DeleteItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("service: failed to delete cart item")
		return fmt.Errorf("service: failed to delete cart item '%s': %w", itemID, err)
	}
	return nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to clear cart")
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}
