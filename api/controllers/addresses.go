package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/address"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type addressWriteRequest struct {
	RecipientName string `json:"recipient_name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	AddressLine   string `json:"address_line" validate:"required"`
	Ward          string `json:"ward"`
	District      string `json:"district" validate:"required"`
	Province      string `json:"province" validate:"required"`
	IsDefault     bool   `json:"is_default"`
}

func (req addressWriteRequest) toInput() address.Input {
	return address.Input{
		RecipientName: strings.TrimSpace(req.RecipientName),
		Phone:         strings.TrimSpace(req.Phone),
		AddressLine:   strings.TrimSpace(req.AddressLine),
		Ward:          strings.TrimSpace(req.Ward),
		District:      strings.TrimSpace(req.District),
		Province:      strings.TrimSpace(req.Province),
		IsDefault:     req.IsDefault,
	}
}

type addressResponse struct {
	ID            uuid.UUID `json:"id"`
	RecipientName string    `json:"recipient_name"`
	Phone         string    `json:"phone"`
	AddressLine   string    `json:"address_line"`
	Ward          string    `json:"ward"`
	District      string    `json:"district"`
	Province      string    `json:"province"`
	IsDefault     bool      `json:"is_default"`
}

func addressResponseFromModel(m *models.Address) addressResponse {
	return addressResponse{
		ID:            m.ID,
		RecipientName: m.RecipientName,
		Phone:         m.Phone,
		AddressLine:   m.AddressLine,
		Ward:          m.Ward,
		District:      m.District,
		Province:      m.Province,
		IsDefault:     m.IsDefault,
	}
}

// AddressList returns the caller's saved addresses, default first.
func AddressList(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]addressResponse, 0, len(rows))
		for i := range rows {
			items = append(items, addressResponseFromModel(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// AddressCreate saves a new delivery address.
func AddressCreate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addressWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), userID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, addressResponseFromModel(created))
	}
}

// AddressUpdate rewrites one saved address.
func AddressUpdate(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := parseURLUUID(r, "addressId", "address id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addressWriteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), userID, addressID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addressResponseFromModel(updated))
	}
}

// AddressDelete removes one saved address.
func AddressDelete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := parseURLUUID(r, "addressId", "address id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// AddressSetDefault makes one address the default, unsetting the rest.
func AddressSetDefault(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := parseURLUUID(r, "addressId", "address id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetDefault(r.Context(), userID, addressID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
