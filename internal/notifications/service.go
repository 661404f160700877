package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
)

// Service is the in-app notification feed.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

// Page is one slice of the feed plus the cursor for the next slice.
type Page struct {
	Items      []models.Notification
	NextCursor string
	Unread     int64
}

type service struct {
	repo Repository
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*Page, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread")
	}

	return &Page{Items: rows, NextCursor: next, Unread: unread}, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	notification, err := s.repo.Find(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if notification.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "notification does not belong to user")
	}
	if notification.ReadAt != nil {
		return nil
	}
	if err := s.repo.MarkRead(ctx, notificationID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all read")
	}
	return nil
}
