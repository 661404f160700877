package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/tuanvle/dacsan-backend/pkg/auth"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	pkgerrors "github.com/tuanvle/dacsan-backend/pkg/errors"
	"github.com/tuanvle/dacsan-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// sessionStore is the slice of the session manager auth drives: one
// session per minted token, destroyed on logout.
type sessionStore interface {
	Create(ctx context.Context, accessID string, userID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service registers accounts and runs the login/logout token lifecycle.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

// RegisterInput carries one registration request. The store fields are
// required only when Role is VENDOR.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    *string
	Role     enums.UserRole

	StoreName     string
	StoreProvince string
	StoreRegion   enums.Region
}

// LoginInput carries one login request.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the outcome of a successful register or login.
type Session struct {
	Token    string
	User     models.User
	VendorID *uuid.UUID
}

type service struct {
	repo     Repository
	tx       txRunner
	sessions sessionStore
	jwt      config.JWTConfig
	password config.PasswordConfig
}

// NewService wires auth dependencies.
func NewService(repo Repository, tx txRunner, sessions sessionStore, jwt config.JWTConfig, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auth repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "session store required")
	}
	return &service{repo: repo, tx: tx, sessions: sessions, jwt: jwt, password: password}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if input.Role != enums.UserRoleCustomer && input.Role != enums.UserRoleVendor {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be CUSTOMER or VENDOR")
	}
	if input.Role == enums.UserRoleVendor {
		if strings.TrimSpace(input.StoreName) == "" || strings.TrimSpace(input.StoreProvince) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name and province are required for vendors")
		}
		if !input.StoreRegion.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store region must be NORTH, CENTRAL or SOUTH")
		}
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		user     models.User
		vendorID *uuid.UUID
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		exists, err := repo.EmailExists(ctx, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}

		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(input.FullName),
			Phone:        input.Phone,
			Role:         input.Role,
			IsActive:     true,
		}
		if err := repo.CreateUser(ctx, &user); err != nil {
			// EmailExists above races concurrent registrations; the unique
			// index is the arbiter.
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		if input.Role == enums.UserRoleVendor {
			vendor := models.Vendor{
				ID:        uuid.New(),
				UserID:    user.ID,
				StoreName: strings.TrimSpace(input.StoreName),
				Region:    input.StoreRegion,
				Province:  strings.TrimSpace(input.StoreProvince),
				Phone:     input.Phone,
				IsActive:  true,
			}
			if err := repo.CreateVendor(ctx, &vendor); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor profile")
			}
			vendorID = &vendor.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.openSession(ctx, user, vendorID)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is disabled")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	var vendorID *uuid.UUID
	if user.Role == enums.UserRoleVendor {
		vendor, err := s.repo.FindVendorByUser(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor profile")
		}
		if vendor != nil {
			vendorID = &vendor.ID
		}
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	return s.openSession(ctx, *user, vendorID)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if accessID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token id required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// openSession mints an access token and records its redis session so the
// middleware can reject tokens that outlive a logout.
func (s *service) openSession(ctx context.Context, user models.User, vendorID *uuid.UUID) (*Session, error) {
	jti := uuid.NewString()
	token, err := pkgauth.MintAccessToken(s.jwt, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     user.Role,
		VendorID: vendorID,
		JTI:      jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Create(ctx, jti, user.ID.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}
	return &Session{Token: token, User: user, VendorID: vendorID}, nil
}
