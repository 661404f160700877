package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/vendors"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type vendorProfileResponse struct {
	ID          uuid.UUID    `json:"id"`
	StoreName   string       `json:"store_name"`
	Description *string      `json:"description,omitempty"`
	Region      enums.Region `json:"region"`
	Province    string       `json:"province"`
	Phone       *string      `json:"phone,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
}

func vendorProfileResponseFromModel(m *models.Vendor) vendorProfileResponse {
	return vendorProfileResponse{
		ID:          m.ID,
		StoreName:   m.StoreName,
		Description: m.Description,
		Region:      m.Region,
		Province:    m.Province,
		Phone:       m.Phone,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
	}
}

type vendorProfileRequest struct {
	StoreName   string  `json:"store_name" validate:"required"`
	Description *string `json:"description"`
	Province    string  `json:"province" validate:"required"`
	Region      string  `json:"region" validate:"required"`
	Phone       *string `json:"phone"`
}

type dailyRevenueResponse struct {
	Date       string `json:"date"`
	Revenue    int64  `json:"revenue"`
	OrderCount int64  `json:"order_count"`
}

type vendorStatsResponse struct {
	TotalRevenue     int64                  `json:"total_revenue"`
	TotalOrders      int64                  `json:"total_orders"`
	PendingOrders    int64                  `json:"pending_orders"`
	ProcessingOrders int64                  `json:"processing_orders"`
	CompletedOrders  int64                  `json:"completed_orders"`
	CancelledOrders  int64                  `json:"cancelled_orders"`
	RevenueChart     []dailyRevenueResponse `json:"revenue_chart"`
}

// VendorProfile returns the caller's storefront profile.
func VendorProfile(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendorProfileResponseFromModel(profile))
	}
}

// VendorProfileUpdate rewrites the storefront profile.
func VendorProfileUpdate(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload vendorProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		region, err := enums.ParseRegion(strings.TrimSpace(payload.Region))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid region"))
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), vendorID, vendors.ProfileInput{
			StoreName:   strings.TrimSpace(payload.StoreName),
			Description: payload.Description,
			Province:    strings.TrimSpace(payload.Province),
			Region:      region,
			Phone:       payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendorProfileResponseFromModel(updated))
	}
}

// VendorStats returns lifetime totals plus the seven day revenue chart.
func VendorStats(svc vendors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vendor service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Stats(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		chart := make([]dailyRevenueResponse, 0, len(stats.RevenueChart))
		for _, day := range stats.RevenueChart {
			chart = append(chart, dailyRevenueResponse{
				Date:       day.Date.Format("2006-01-02"),
				Revenue:    day.Revenue,
				OrderCount: day.OrderCount,
			})
		}
		responses.WriteSuccess(w, vendorStatsResponse{
			TotalRevenue:     stats.TotalRevenue,
			TotalOrders:      stats.TotalOrders,
			PendingOrders:    stats.PendingOrders,
			ProcessingOrders: stats.ProcessingOrders,
			CompletedOrders:  stats.CompletedOrders,
			CancelledOrders:  stats.CancelledOrders,
			RevenueChart:     chart,
		})
	}
}
