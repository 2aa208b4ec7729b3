package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/events"
)

var (
	ErrInvalidNotification = errors.New("type, title and message are required")
	ErrNothingToMark       = errors.New("notification_ids or mark_all_read is required")
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*Inbox, error)
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	// HandleOrderEvent stores the notifications produced by an order event.
	HandleOrderEvent(ctx context.Context, e events.Envelope) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) (*Inbox, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	ns, err := s.repo.List(ctx, userID, unreadOnly, limit)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list notifications")
		return nil, fmt.Errorf("service: failed to list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to count unread notifications: %w", err)
	}
	return &Inbox{Notifications: ns, UnreadCount: unread}, nil
}

func (s *service) Create(ctx context.Context, n *Notification) error {
	n.Type = strings.TrimSpace(n.Type)
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if n.Type == "" || n.Title == "" || n.Message == "" || n.UserID == uuid.Nil {
		return ErrInvalidNotification
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).Stringer("user_id", n.UserID).Msg("service: failed to create notification")
		return fmt.Errorf("service: failed to create notification: %w", err)
	}
	return nil
}

func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNothingToMark
	}
	updated, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to mark notifications read")
		return 0, fmt.Errorf("service: failed to mark notifications read: %w", err)
	}
	return updated, nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to mark all notifications read")
		return 0, fmt.Errorf("service: failed to mark all notifications read: %w", err)
	}
	return updated, nil
}

func (s *service) HandleOrderEvent(ctx context.Context, e events.Envelope) error {
	p, err := events.UnwrapPayload[events.OrderPayload](e)
	if err != nil {
		return err
	}

	ns := ForOrderEvent(e.EventType, p)
	if len(ns) == 0 {
		log.Debug().Str("event_type", e.EventType).Msg("service: no notifications for event")
		return nil
	}

	ptrs := make([]*Notification, len(ns))
	for i := range ns {
		ptrs[i] = &ns[i]
	}
	if err := s.repo.Create(ctx, ptrs...); err != nil {
		log.Error().Err(err).Str("event_id", e.EventID).Stringer("order_id", p.OrderID).Msg("service: failed to store order notifications")
		return fmt.Errorf("service: failed to store order notifications: %w", err)
	}

	log.Info().Str("event_type", e.EventType).Stringer("order_id", p.OrderID).Int("count", len(ns)).
		Msg("service: order notifications stored")
	return nil
}
