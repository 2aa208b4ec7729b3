// Package auth signs users in with one-time codes sent to their phone.
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/user"
)

const codeLength = 6

var (
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidOTP      = errors.New("invalid OTP")
	ErrTooManyAttempts = errors.New("too many failed attempts, request a new OTP")
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

type UserRegistrar interface {
	FindOrCreateByPhone(ctx context.Context, phone string, profile user.Profile) (*user.User, bool, error)
}

type Service interface {
	SendOTP(ctx context.Context, phone string) error
	// VerifyOTP consumes the pending code and returns the signed-in user.
	// created is true when the account did not exist before.
	VerifyOTP(ctx context.Context, phone, code string, profile user.Profile) (u *user.User, created bool, err error)
}

type service struct {
	store OTPStore
	users UserRegistrar
	cfg   config.AuthConfig
}

func NewService(store OTPStore, users UserRegistrar, cfg config.AuthConfig) Service {
	return &service{store: store, users: users, cfg: cfg}
}

func normalizePhone(phone string) (string, error) {
	p := strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if !phonePattern.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}

func (s *service) SendOTP(ctx context.Context, phone string) error {
	phone, err := normalizePhone(phone)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("service: failed to generate otp: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service: failed to hash otp: %w", err)
	}

	if err := s.store.Save(ctx, phone, string(hash), s.cfg.OTPTTL); err != nil {
		log.Error().Err(err).Msg("service: failed to store otp")
		return fmt.Errorf("service: failed to store otp: %w", err)
	}

	// No SMS gateway is wired; the code only reaches the debug log.
	log.Debug().Str("phone", phone).Str("otp", code).Msg("service: otp issued")
	log.Info().Str("phone", maskPhone(phone)).Dur("ttl", s.cfg.OTPTTL).Msg("service: otp sent")
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, phone, code string, profile user.Profile) (*user.User, bool, error) {
	phone, err := normalizePhone(phone)
	if err != nil {
		return nil, false, err
	}

	ch, err := s.store.Get(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrOTPNotFound) {
			return nil, false, ErrOTPNotFound
		}
		return nil, false, fmt.Errorf("service: failed to load otp: %w", err)
	}

	if ch.Attempts >= s.cfg.OTPMaxAttempts {
		s.discard(ctx, phone)
		log.Warn().Str("phone", maskPhone(phone)).Msg("service: otp attempts exhausted")
		return nil, false, ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(ch.Hash), []byte(strings.TrimSpace(code))) != nil {
		if _, err := s.store.IncrementAttempts(ctx, phone); err != nil {
			if errors.Is(err, ErrOTPNotFound) {
				return nil, false, ErrOTPNotFound
			}
			log.Error().Err(err).Msg("service: failed to record otp attempt")
		}
		return nil, false, ErrInvalidOTP
	}

	s.discard(ctx, phone)

	u, created, err := s.users.FindOrCreateByPhone(ctx, phone, profile)
	if err != nil {
		return nil, false, err
	}
	log.Info().Stringer("user_id", u.ID).Bool("new_user", created).Msg("service: otp verified")
	return u, created, nil
}

func (s *service) discard(ctx context.Context, phone string) {
	if err := s.store.Delete(ctx, phone); err != nil {
		log.Error().Err(err).Msg("service: failed to delete otp")
	}
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
