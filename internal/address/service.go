package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	Create(ctx context.Context, userID uuid.UUID, a *Address) error
	Update(ctx context.Context, userID, id uuid.UUID, u Update) (*Address, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	addresses, err := s.repo.List(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list addresses")
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	a, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", id).Msg("service: failed to get address")
		return nil, fmt.Errorf("service: failed to get address '%s': %w", id, err)
	}
	return a, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, a *Address) error {
	a.UserID = userID
	if a.Country == "" {
		a.Country = "India"
	}
	if a.AddressType == "" {
		a.AddressType = "home"
	}

	if err := s.repo.Create(ctx, a); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to create address")
		return fmt.Errorf("service: failed to create address: %w", err)
	}
	return nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, u Update) (*Address, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	u.apply(a)

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", id).Msg("service: failed to update address")
		return nil, fmt.Errorf("service: failed to update address '%s': %w", id, err)
	}
	return a, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", id).Msg("service: failed to delete address")
		return fmt.Errorf("service: failed to delete address '%s': %w", id, err)
	}
	return nil
}
