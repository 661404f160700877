package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/api/middleware"
	"github.com/tuanvle/dacsan-backend/api/responses"
	"github.com/tuanvle/dacsan-backend/api/validators"
	"github.com/tuanvle/dacsan-backend/internal/auth"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

type registerRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" validate:"required"`

	StoreName     string `json:"store_name"`
	StoreProvince string `json:"store_province"`
	StoreRegion   string `json:"store_region"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token    string       `json:"token"`
	User     userResponse `json:"user"`
	VendorID *uuid.UUID   `json:"vendor_id,omitempty"`
}

type userResponse struct {
	ID       uuid.UUID      `json:"id"`
	Email    string         `json:"email"`
	FullName string         `json:"full_name"`
	Phone    *string        `json:"phone,omitempty"`
	Role     enums.UserRole `json:"role"`
	Created  time.Time      `json:"created_at"`
}

func sessionResponseFromResult(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token:    s.Token,
		User:     userResponseFromModel(s.User),
		VendorID: s.VendorID,
	}
}

func userResponseFromModel(u models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     u.Role,
		Created:  u.CreatedAt,
	}
}

// AuthRegister creates a customer or vendor account and opens a session.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseUserRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role"))
			return
		}

		input := auth.RegisterInput{
			Email:         strings.TrimSpace(payload.Email),
			Password:      payload.Password,
			FullName:      strings.TrimSpace(payload.FullName),
			Phone:         payload.Phone,
			Role:          role,
			StoreName:     strings.TrimSpace(payload.StoreName),
			StoreProvince: strings.TrimSpace(payload.StoreProvince),
		}
		if raw := strings.TrimSpace(payload.StoreRegion); raw != "" {
			region, err := enums.ParseRegion(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid store region"))
				return
			}
			input.StoreRegion = region
		}

		session, err := svc.Register(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponseFromResult(session))
	}
}

// AuthLogin verifies credentials and opens a session.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), auth.LoginInput{
			Email:    strings.TrimSpace(payload.Email),
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionResponseFromResult(session))
	}
}

// AuthLogout revokes the session tied to the presented token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		tokenID := middleware.TokenIDFromContext(r.Context())
		if tokenID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), tokenID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
