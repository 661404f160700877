package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/middleware"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
)

func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}

func currentVendorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
	}
	return parsed, nil
}
