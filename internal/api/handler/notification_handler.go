package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pawfectcare/notifier/internal/domain"
	"github.com/pawfectcare/notifier/internal/service"
)

// NotificationHandler serves operator visibility into email records:
// their delivery status and any transport error message.
type NotificationHandler struct {
	dispatcher *service.Dispatcher
	logger     *zap.Logger
}

func NewNotificationHandler(dispatcher *service.Dispatcher, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{dispatcher: dispatcher, logger: logger}
}

// GetByID handles GET /api/v1/notifications/{id}
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := h.dispatcher.GetEmailNotification(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseListFilter(r)
	notifications, total, err := h.dispatcher.ListEmailNotifications(r.Context(), filter)
	if err != nil {
		h.logger.Error("list email notifications failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":  notifications,
		"total": total,
		"page":  filter.Page,
		"limit": filter.Limit,
	})
}

func parseListFilter(r *http.Request) domain.ListFilter {
	q := r.URL.Query()
	filter := domain.ListFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if s := q.Get("status"); s != "" {
		st := domain.Status(s)
		filter.Status = &st
	}
	if f := q.Get("from"); f != "" {
		if t, err := time.Parse(time.RFC3339, f); err == nil {
			filter.From = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &t
		}
	}
	return filter
}
