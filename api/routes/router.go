package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tuanvle/dacsan-backend/api/controllers"
	"github.com/tuanvle/dacsan-backend/api/middleware"
	"github.com/tuanvle/dacsan-backend/internal/address"
	internalauth "github.com/tuanvle/dacsan-backend/internal/auth"
	"github.com/tuanvle/dacsan-backend/internal/cart"
	checkoutsvc "github.com/tuanvle/dacsan-backend/internal/checkout"
	"github.com/tuanvle/dacsan-backend/internal/notifications"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/internal/products"
	"github.com/tuanvle/dacsan-backend/internal/vendors"
	"github.com/tuanvle/dacsan-backend/pkg/auth/session"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/enums"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth          internalauth.Service
	Addresses     address.Service
	Products      products.Service
	Cart          cart.Service
	Checkout      checkoutsvc.Service
	Orders        orders.Service
	Vendors       vendors.Service
	Notifications notifications.Service
	Countdown     controllers.Countdown
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	// A typed nil *redis.Client must not become a non-nil interface.
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(idemStore, logg),
		).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(svcs.Products, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		// After Auth so replay cache entries are scoped per caller.
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svcs.Addresses, logg))
			r.Post("/", controllers.AddressCreate(svcs.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(svcs.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(svcs.Addresses, logg))
			r.Post("/{addressId}/default", controllers.AddressSetDefault(svcs.Addresses, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})

		r.Route("/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleVendor), logg))

			r.Get("/profile", controllers.VendorProfile(svcs.Vendors, logg))
			r.Put("/profile", controllers.VendorProfileUpdate(svcs.Vendors, logg))
			r.Get("/stats", controllers.VendorStats(svcs.Vendors, logg))

			r.Get("/orders", controllers.VendorDashboard(svcs.Orders, svcs.Countdown, logg))
			r.Patch("/orders/{subOrderId}/status", controllers.VendorUpdateSubOrderStatus(svcs.Orders, svcs.Countdown, logg))

			r.Post("/products", controllers.VendorCreateProduct(svcs.Products, logg))
			r.Put("/products/{productId}", controllers.VendorUpdateProduct(svcs.Products, logg))
			r.Delete("/products/{productId}", controllers.VendorDeleteProduct(svcs.Products, logg))
		})
	})

	return r
}
