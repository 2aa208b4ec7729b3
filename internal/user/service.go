package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Profile holds the optional fields supplied on first sign-in or profile edit.
type Profile struct {
	FullName     *string
	Email        *string
	Role         Role
	BusinessName *string
	GSTNumber    *string
}

type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindOrCreateByPhone returns the user registered with phone, creating a
	// verified account from profile when none exists. created reports which.
	FindOrCreateByPhone(ctx context.Context, phone string, profile Profile) (u *User, created bool, err error)
	UpdateProfile(ctx context.Context, id uuid.UUID, profile Profile) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id '%s': %w", id, err)
	}
	return u, nil
}

func (s *service) FindOrCreateByPhone(ctx context.Context, phone string, profile Profile) (*User, bool, error) {
	existing, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		if !existing.IsVerified {
			existing.IsVerified = true
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, false, fmt.Errorf("service: failed to mark user verified: %w", err)
			}
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Msg("service: failed to look up user by phone")
		return nil, false, fmt.Errorf("service: failed to look up user by phone: %w", err)
	}

	role := profile.Role
	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return nil, false, ErrInvalidRole
	}

	u := &User{
		Phone:        phone,
		Email:        profile.Email,
		FullName:     profile.FullName,
		Role:         role,
		BusinessName: profile.BusinessName,
		GSTNumber:    profile.GSTNumber,
		IsVerified:   true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrPhoneExists) {
			// Lost a race with a concurrent sign-in for the same phone.
			existing, getErr := s.repo.GetByPhone(ctx, phone)
			if getErr != nil {
				return nil, false, fmt.Errorf("service: failed to reload user after conflict: %w", getErr)
			}
			return existing, false, nil
		}
		log.Error().Err(err).Msg("service: failed to create user")
		return nil, false, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Stringer("role", u.Role).Msg("service: user registered")
	return u, true, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, profile Profile) (*User, error) {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if profile.FullName != nil {
		u.FullName = profile.FullName
	}
	if profile.Email != nil {
		u.Email = profile.Email
	}
	if profile.BusinessName != nil {
		u.BusinessName = profile.BusinessName
	}
	if profile.GSTNumber != nil {
		u.GSTNumber = profile.GSTNumber
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to update user")
		return nil, fmt.Errorf("service: failed to update user by id '%s': %w", id, err)
	}

	return u, nil
}
