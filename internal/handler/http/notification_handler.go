package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/sarthaksaklani/enakart/internal/notification"
)

type CreateNotificationRequest struct {
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	Type    string     `json:"type" validate:"required"`
	Title   string     `json:"title" validate:"required"`
	Message string     `json:"message" validate:"required"`
	Link    string     `json:"link,omitempty"`
}

type MarkNotificationsRequest struct {
	NotificationIDs []uuid.UUID `json:"notification_ids,omitempty"`
	MarkAllRead     bool        `json:"mark_all_read,omitempty"`
}

type MarkNotificationsResponse struct {
	Updated int64 `json:"updated"`
}

type NotificationHandler struct {
	notifications notification.Service
	validate      *validator.Validate
}

func NewNotificationHandler(notifications notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, validate: newValidator()}
}

func (h *NotificationHandler) RegisterRoutes(router chi.Router) {
	router.Route("/notifications", func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Patch("/", h.handleMarkRead)
	})
}

func (h *NotificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	inbox, err := h.notifications.List(r.Context(), currentUser(r).ID, q.Get("unread_only") == "true", limit)
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to fetch notifications")
		return
	}
	respondWithData(w, http.StatusOK, inbox)
}

func (h *NotificationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	n := &notification.Notification{
		UserID:  currentUser(r).ID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Link:    req.Link,
	}
	if req.UserID != nil {
		n.UserID = *req.UserID
	}

	if err := h.notifications.Create(r.Context(), n); err != nil {
		respondWithServiceError(w, r, err, "Failed to create notification")
		return
	}
	respondWithData(w, http.StatusCreated, n)
}

func (h *NotificationHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkNotificationsRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	userID := currentUser(r).ID
	var (
		updated int64
		err     error
	)
	if req.MarkAllRead {
		updated, err = h.notifications.MarkAllRead(r.Context(), userID)
	} else {
		updated, err = h.notifications.MarkRead(r.Context(), userID, req.NotificationIDs)
	}
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to update notifications")
		return
	}
	respondWithData(w, http.StatusOK, MarkNotificationsResponse{Updated: updated})
}
