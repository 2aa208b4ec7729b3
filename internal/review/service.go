package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/product"
)

var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentRequired = errors.New("comment is required")
	ErrProductNotFound = errors.New("product not found")
)

type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}

type CreateInput struct {
	ProductID uuid.UUID
	Rating    int
	Title     string
	Comment   string
}

type UpdateInput struct {
	Rating  *int
	Title   *string
	Comment *string
}

type Service interface {
	ListForProduct(ctx context.Context, productID uuid.UUID) (*ProductReviews, error)
	Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Review, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, in UpdateInput) (*Review, error)
}

type service struct {
	repo     Repository
	products ProductLookup
}

func NewService(repo Repository, products ProductLookup) Service {
	return &service{repo: repo, products: products}
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) (*ProductReviews, error) {
	reviews, err := s.repo.ListApproved(ctx, productID)
	if err != nil {
		log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to list reviews")
		return nil, fmt.Errorf("service: failed to list reviews: %w", err)
	}
	return &ProductReviews{Reviews: reviews, Stats: BuildStats(reviews)}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*Review, error) {
	if !validRating(in.Rating) {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(in.Comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}

	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to load product: %w", err)
	}

	orderID, err := s.repo.DeliveredOrderWith(ctx, userID, in.ProductID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to check purchase history")
		return nil, fmt.Errorf("service: failed to check purchase history: %w", err)
	}

	rv := &Review{
		ProductID:          in.ProductID,
		UserID:             userID,
		OrderID:            orderID,
		Rating:             in.Rating,
		Title:              strings.TrimSpace(in.Title),
		Comment:            comment,
		IsVerifiedPurchase: orderID != nil,
	}
	if err := s.repo.Create(ctx, rv); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			return nil, ErrAlreadyReviewed
		}
		log.Error().Err(err).Stringer("product_id", in.ProductID).Msg("service: failed to create review")
		return nil, fmt.Errorf("service: failed to create review: %w", err)
	}

	log.Info().Stringer("review_id", rv.ID).Stringer("product_id", rv.ProductID).
		Bool("verified_purchase", rv.IsVerifiedPurchase).Msg("service: review submitted for approval")
	return rv, nil
}

func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, in UpdateInput) (*Review, error) {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to get review: %w", err)
	}
	if rv.UserID != userID {
		return nil, ErrNotFound
	}

	if in.Rating != nil {
		if !validRating(*in.Rating) {
			return nil, ErrInvalidRating
		}
		rv.Rating = *in.Rating
	}
	if in.Title != nil {
		rv.Title = strings.TrimSpace(*in.Title)
	}
	if in.Comment != nil {
		c := strings.TrimSpace(*in.Comment)
		if c == "" {
			return nil, ErrCommentRequired
		}
		rv.Comment = c
	}
	// Edited reviews go back through moderation.
	rv.IsApproved = false

	if err := s.repo.Update(ctx, rv); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("review_id", reviewID).Msg("service: failed to update review")
		return nil, fmt.Errorf("service: failed to update review: %w", err)
	}
	return rv, nil
}
