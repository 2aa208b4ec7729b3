package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	// Validate checks code against the buyer and amount and prices the discount.
	Validate(ctx context.Context, userID uuid.UUID, code string, amount float64) (*Result, error)
	ListAvailable(ctx context.Context) ([]Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Validate(ctx context.Context, userID uuid.UUID, code string, amount float64) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, invalid("Coupon code is required")
	}
	if amount <= 0 {
		return nil, invalid("Order amount must be greater than 0")
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("code", code).Msg("service: failed to load coupon")
		return nil, fmt.Errorf("service: failed to load coupon: %w", err)
	}

	uses := 0
	if c.PerUserLimit != nil {
		uses, err = s.repo.CountUserUsage(ctx, c.ID, userID)
		if err != nil {
			log.Error().Err(err).Stringer("coupon_id", c.ID).Msg("service: failed to count coupon usage")
			return nil, fmt.Errorf("service: failed to count coupon usage: %w", err)
		}
	}

	if err := Check(c, amount, uses, s.now()); err != nil {
		return nil, err
	}

	discount, final := Calculate(c, amount)
	return &Result{
		CouponID:       c.ID,
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]Coupon, error) {
	coupons, err := s.repo.ListAvailable(ctx, s.now())
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list coupons")
		return nil, fmt.Errorf("service: failed to list coupons: %w", err)
	}
	return coupons, nil
}
