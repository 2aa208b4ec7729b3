package seller

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/pagination"
)

type PaymentsPage struct {
	Payments   []PaymentRow    `json:"payments"`
	Summary    PaymentSummary  `json:"summary"`
	Pagination pagination.Meta `json:"pagination"`
}

type Service interface {
	Analytics(ctx context.Context, sellerID uuid.UUID, period string) (*Analytics, error)
	Payments(ctx context.Context, sellerID uuid.UUID, paymentStatus string, page pagination.Params) (*PaymentsPage, error)
}

type service struct {
	repo Repository
	cfg  config.SellerConfig
	now  func() time.Time
}

func NewService(repo Repository, cfg config.SellerConfig) Service {
	return &service{repo: repo, cfg: cfg, now: time.Now}
}

func (s *service) Analytics(ctx context.Context, sellerID uuid.UUID, period string) (*Analytics, error) {
	name, length, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	end := s.now().UTC()
	start := end.Add(-length)

	current, err := s.repo.SaleLines(ctx, sellerID, start, end)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to load current sales")
		return nil, fmt.Errorf("service: failed to load sales: %w", err)
	}
	previous, err := s.repo.SaleLines(ctx, sellerID, start.Add(-length), start)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to load previous sales")
		return nil, fmt.Errorf("service: failed to load sales: %w", err)
	}
	counts, err := s.repo.InventoryCounts(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count inventory: %w", err)
	}

	a := BuildAnalytics(name, current, previous)
	a.TotalProducts = counts.TotalProducts
	a.LowStockProducts = counts.LowStockProducts
	return &a, nil
}

func (s *service) Payments(ctx context.Context, sellerID uuid.UUID, paymentStatus string, page pagination.Params) (*PaymentsPage, error) {
	rows, total, err := s.repo.Payments(ctx, sellerID, paymentStatus, page)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to list seller payments")
		return nil, fmt.Errorf("service: failed to list payments: %w", err)
	}
	groups, err := s.repo.PaymentGroups(ctx, sellerID)
	if err != nil {
		log.Error().Err(err).Stringer("seller_id", sellerID).Msg("service: failed to summarise seller payments")
		return nil, fmt.Errorf("service: failed to summarise payments: %w", err)
	}

	return &PaymentsPage{
		Payments:   rows,
		Summary:    SummarizePayments(groups, s.cfg.CommissionRate),
		Pagination: page.Meta(total),
	}, nil
}
