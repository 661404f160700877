package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

// Countdown is the kitchen scheduler surface the vendor pipeline drives.
type Countdown interface {
	Arm(subOrderID uuid.UUID)
	Disarm(subOrderID uuid.UUID)
	Remaining(subOrderID uuid.UUID) (int, bool)
}

type vendorDashboardResponse struct {
	Pending    []subOrderResponse `json:"pending"`
	Cooking    []subOrderResponse `json:"cooking"`
	Delivering []subOrderResponse `json:"delivering"`
	History    []subOrderResponse `json:"history"`
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type statusUpdateResponse struct {
	SubOrder    subOrderResponse  `json:"sub_order"`
	OrderStatus enums.OrderStatus `json:"order_status"`
}

// VendorDashboard returns the vendor's work queues. Sub-orders that are
// cooking carry their countdown so the frontend can render the timer.
func VendorDashboard(svc orders.Service, countdown Countdown, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partition, err := svc.VendorDashboard(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vendorDashboardResponse{
			Pending:    subOrderListResponse(partition.Pending, countdown),
			Cooking:    subOrderListResponse(partition.Cooking, countdown),
			Delivering: subOrderListResponse(partition.Delivering, countdown),
			History:    subOrderListResponse(partition.History, countdown),
		})
	}
}

// VendorUpdateSubOrderStatus applies one pipeline transition and keeps the
// kitchen countdown in step with it.
func VendorUpdateSubOrderStatus(svc orders.Service, countdown Countdown, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		vendorID, err := currentVendorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subOrderID, err := parseURLUUID(r, "subOrderId", "sub-order id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseSubOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
			return
		}

		change, err := svc.UpdateSubOrderStatus(r.Context(), orders.UpdateStatusInput{
			SubOrderID:  subOrderID,
			Target:      target,
			VendorID:    vendorID,
			ActorUserID: userID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if countdown != nil {
			if change.ArmCountdown {
				countdown.Arm(change.SubOrder.ID)
			}
			if change.DisarmCountdown {
				countdown.Disarm(change.SubOrder.ID)
			}
		}

		sub := subOrderResponseFromModel(&change.SubOrder)
		attachCountdown(&sub, countdown)
		responses.WriteSuccess(w, statusUpdateResponse{
			SubOrder:    sub,
			OrderStatus: change.OrderStatus,
		})
	}
}

func subOrderListResponse(rows []models.SubOrder, countdown Countdown) []subOrderResponse {
	items := make([]subOrderResponse, 0, len(rows))
	for i := range rows {
		resp := subOrderResponseFromModel(&rows[i])
		attachCountdown(&resp, countdown)
		items = append(items, resp)
	}
	return items
}

func attachCountdown(resp *subOrderResponse, countdown Countdown) {
	if countdown == nil {
		return
	}
	if remaining, armed := countdown.Remaining(resp.ID); armed {
		resp.CookingSecondsLeft = &remaining
	}
}
