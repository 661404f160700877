package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/checkout"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type checkoutRequest struct {
	AddressID     string  `json:"address_id" validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	Notes         *string `json:"notes"`
}

// Checkout converts the caller's cart into an order split per vendor.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressID, err := uuid.Parse(strings.TrimSpace(payload.AddressID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address id"))
			return
		}
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.PaymentMethod))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method"))
			return
		}

		order, err := svc.CreateOrder(r.Context(), userID, checkout.CreateOrderInput{
			AddressID:     addressID,
			PaymentMethod: method,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponseFromModel(order))
	}
}
