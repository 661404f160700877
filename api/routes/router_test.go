package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvle/dacsan-backend/internal/address"
	internalauth "github.com/tuanvle/dacsan-backend/internal/auth"
	"github.com/tuanvle/dacsan-backend/internal/cart"
	"github.com/tuanvle/dacsan-backend/internal/checkout"
	"github.com/tuanvle/dacsan-backend/internal/notifications"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/internal/products"
	"github.com/tuanvle/dacsan-backend/internal/vendors"
	pkgAuth "github.com/tuanvle/dacsan-backend/pkg/auth"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/pagination"
	"github.com/tuanvle/dacsan-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input internalauth.RegisterInput) (*internalauth.Session, error) {
	return &internalauth.Session{}, nil
}

func (stubAuthService) Login(ctx context.Context, input internalauth.LoginInput) (*internalauth.Session, error) {
	return &internalauth.Session{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubAddressService struct{}

func (stubAddressService) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return nil, nil
}

func (stubAddressService) Create(ctx context.Context, userID uuid.UUID, input address.Input) (*models.Address, error) {
	return &models.Address{}, nil
}

func (stubAddressService) Update(ctx context.Context, userID, addressID uuid.UUID, input address.Input) (*models.Address, error) {
	return &models.Address{}, nil
}

func (stubAddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return nil
}

func (stubAddressService) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	return nil
}

type stubProductsService struct{}

func (stubProductsService) List(ctx context.Context, filter products.ListFilter, page pagination.PageParams) (*products.PageResult, error) {
	return &products.PageResult{}, nil
}

func (stubProductsService) GetDetail(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) Create(ctx context.Context, vendorID uuid.UUID, input products.Input) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) Update(ctx context.Context, vendorID, productID uuid.UUID, input products.Input) (*models.Product, error) {
	return &models.Product{}, nil
}

func (stubProductsService) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	return nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, userID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, nil
}

func (stubCartService) AddItem(ctx context.Context, userID uuid.UUID, input cart.AddItemInput) (*cart.View, error) {
	return &cart.View{}, nil
}

func (stubCartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*cart.View, error) {
	return &cart.View{}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*cart.View, error) {
	return &cart.View{}, nil
}

func (stubCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) CreateOrder(ctx context.Context, userID uuid.UUID, input checkout.CreateOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}

type stubOrdersService struct{}

func (stubOrdersService) ListCustomerOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (stubOrdersService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (stubOrdersService) VendorDashboard(ctx context.Context, vendorID uuid.UUID) (*orders.Partition, error) {
	return &orders.Partition{}, nil
}

func (stubOrdersService) UpdateSubOrderStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.StatusChange, error) {
	return &orders.StatusChange{}, nil
}

type stubVendorsService struct{}

func (stubVendorsService) GetProfile(ctx context.Context, vendorID uuid.UUID) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendorsService) UpdateProfile(ctx context.Context, vendorID uuid.UUID, input vendors.ProfileInput) (*models.Vendor, error) {
	return &models.Vendor{}, nil
}

func (stubVendorsService) Stats(ctx context.Context, vendorID uuid.UUID) (*vendors.Stats, error) {
	return &vendors.Stats{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*notifications.Page, error) {
	return &notifications.Page{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return nil
}

type stubCountdown struct{}

func (stubCountdown) Arm(uuid.UUID)    {}
func (stubCountdown) Disarm(uuid.UUID) {}
func (stubCountdown) Remaining(uuid.UUID) (int, bool) {
	return 0, false
}

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Env: "test", Port: "0"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		Services{
			Auth:          stubAuthService{},
			Addresses:     stubAddressService{},
			Products:      stubProductsService{},
			Cart:          stubCartService{},
			Checkout:      stubCheckoutService{},
			Orders:        stubOrdersService{},
			Vendors:       stubVendorsService{},
			Notifications: stubNotificationsService{},
			Countdown:     stubCountdown{},
		},
	)
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestProductCatalogIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestCartRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCartSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart got %d", resp.Code)
	}
}

func TestVendorGroupRequiresVendorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	vendorID := uuid.New()
	vendor := httptest.NewRequest(http.MethodGet, "/api/v1/vendor/orders", nil)
	vendor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleVendor, &vendorID))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, vendor)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for vendor got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole, vendorID *uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		VendorID: vendorID,
		JTI:      uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("allow-origin = %q, want configured origin", got)
	}
	if resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}
}

func TestCORSPreflightRejectsUnknownOrigin(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products/", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow-origin %q for unknown origin", got)
	}
}
