package vendors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
)

// Service owns the vendor storefront profile and its dashboard stats.
type Service interface {
	GetProfile(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error)
	UpdateProfile(ctx context.Context, vendorID uuid.UUID, input ProfileInput) (*models.Vendor, error)
	Stats(ctx context.Context, vendorID uuid.UUID) (*Stats, error)
}

// ProfileInput carries the writable vendor profile fields.
type ProfileInput struct {
	StoreName   string
	Description *string
	Province    string
	Region      enums.Region
	Phone       *string
}

// DailyRevenue is one bar of the seven day revenue chart.
type DailyRevenue struct {
	Date       time.Time
	Revenue    int64
	OrderCount int64
}

// Stats is the vendor dashboard summary. Revenue counts only delivered
// sub-orders, in integer VND.
type Stats struct {
	TotalRevenue     int64
	TotalOrders      int64
	PendingOrders    int64
	ProcessingOrders int64
	CompletedOrders  int64
	CancelledOrders  int64
	RevenueChart     []DailyRevenue
}

type service struct {
	repo Repository
}

// NewService wires vendor dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vendor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	vendor, err := s.repo.Find(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

func (s *service) UpdateProfile(ctx context.Context, vendorID uuid.UUID, input ProfileInput) (*models.Vendor, error) {
	if strings.TrimSpace(input.StoreName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name required")
	}
	if !input.Region.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid region")
	}

	vendor, err := s.GetProfile(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	vendor.StoreName = strings.TrimSpace(input.StoreName)
	vendor.Description = input.Description
	vendor.Province = strings.TrimSpace(input.Province)
	vendor.Region = input.Region
	vendor.Phone = input.Phone

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	return vendor, nil
}

func (s *service) Stats(ctx context.Context, vendorID uuid.UUID) (*Stats, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	rows, err := s.repo.ListSubOrders(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sub-orders")
	}
	stats := computeStats(rows, time.Now().UTC())
	return &stats, nil
}

// computeStats classifies every sub-order exactly once: completed beats
// cancelled beats pending, everything else is processing.
func computeStats(rows []SubOrderRow, now time.Time) Stats {
	stats := Stats{TotalOrders: int64(len(rows))}

	today := now.Truncate(24 * time.Hour)
	chart := make([]DailyRevenue, 7)
	dayIndex := make(map[time.Time]int, 7)
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, -(6 - i))
		chart[i] = DailyRevenue{Date: day}
		dayIndex[day] = i
	}

	for _, row := range rows {
		delivered := row.SubOrder.Status == enums.SubOrderStatusDelivered ||
			row.OrderStatus == enums.OrderStatusCompleted
		cancelled := row.SubOrder.Status == enums.SubOrderStatusCancelled ||
			row.OrderStatus == enums.OrderStatusCancelled
		pending := row.SubOrder.Status == enums.SubOrderStatusPending

		switch {
		case delivered:
			stats.CompletedOrders++
			stats.TotalRevenue += row.SubOrder.Subtotal
		case cancelled:
			stats.CancelledOrders++
		case pending:
			stats.PendingOrders++
		default:
			stats.ProcessingOrders++
		}

		if row.SubOrder.Status == enums.SubOrderStatusDelivered {
			day := row.SubOrder.CreatedAt.UTC().Truncate(24 * time.Hour)
			if i, ok := dayIndex[day]; ok {
				chart[i].Revenue += row.SubOrder.Subtotal
				chart[i].OrderCount++
			}
		}
	}

	stats.RevenueChart = chart
	return stats
}
