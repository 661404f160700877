package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/notifications"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
)

type notificationResponse struct {
	ID         uuid.UUID              `json:"id"`
	Type       enums.NotificationType `json:"type"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	OrderID    *uuid.UUID             `json:"order_id,omitempty"`
	SubOrderID *uuid.UUID             `json:"sub_order_id,omitempty"`
	ReadAt     *time.Time             `json:"read_at,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

func notificationResponseFromModel(m *models.Notification) notificationResponse {
	return notificationResponse{
		ID:         m.ID,
		Type:       m.Type,
		Title:      m.Title,
		Message:    m.Message,
		OrderID:    m.OrderID,
		SubOrderID: m.SubOrderID,
		ReadAt:     m.ReadAt,
		CreatedAt:  m.CreatedAt,
	}
}

// ListNotifications serves the cursor-paged feed plus the unread count.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))

		page, err := svc.List(r.Context(), userID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]notificationResponse, 0, len(page.Items))
		for i := range page.Items {
			items = append(items, notificationResponseFromModel(&page.Items[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"items":       items,
			"next_cursor": page.NextCursor,
			"unread":      page.Unread,
		})
	}
}

// MarkNotificationRead stamps one notification as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notificationID, err := parseURLUUID(r, "notificationId", "notification id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), userID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// MarkAllNotificationsRead stamps every unread notification for the caller.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkAllRead(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
