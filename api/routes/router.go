package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/placeshare-backend/api/controllers"
	"github.com/angelmondragon/placeshare-backend/api/middleware"
	"github.com/angelmondragon/placeshare-backend/api/validators"
	"github.com/angelmondragon/placeshare-backend/internal/approval"
	"github.com/angelmondragon/placeshare-backend/internal/auth"
	"github.com/angelmondragon/placeshare-backend/internal/places"
	"github.com/angelmondragon/placeshare-backend/internal/users"
	"github.com/angelmondragon/placeshare-backend/pkg/config"
	"github.com/angelmondragon/placeshare-backend/pkg/db"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/logger"
	"github.com/angelmondragon/placeshare-backend/pkg/metrics"
)

// RateLimiter is the fixed window counter behind the auth rate limits.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services groups the domain services mounted by the router.
type Services struct {
	Auth     auth.Service
	Places   places.Service
	Users    users.Service
	Approval approval.Service
}

// Infra groups the health, metrics and rate limit collaborators. Nil fields
// disable the matching feature.
type Infra struct {
	DB          db.Pinger
	Redis       db.Pinger
	RateLimiter RateLimiter
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(infra.HTTPMetrics),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	uploads := validators.UploadLimits{
		MaxFileBytes: cfg.Cloudinary.MaxUploadBytes(),
		MaxFiles:     cfg.Cloudinary.MaxPhotos,
	}
	radiusKm := cfg.Listing.DefaultRadiusKm

	authn := middleware.Auth(svcs.Auth, logg)
	optionalAuthn := middleware.OptionalAuth(svcs.Auth, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.DB, infra.Redis))
	})
	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(signupPolicy, infra.RateLimiter, logg)).Post("/signup", controllers.AuthSignup(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, infra.RateLimiter, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(authn).Get("/me", controllers.AuthMe(svcs.Auth, logg))
		r.With(authn).Put("/change-password", controllers.AuthChangePassword(svcs.Auth, logg))
	})

	r.Route("/api/places", func(r chi.Router) {
		r.With(optionalAuthn).Get("/", controllers.PlacesList(svcs.Places, radiusKm, logg))
		r.With(optionalAuthn).Get("/{id}", controllers.PlaceGet(svcs.Places, logg))

		r.Group(func(r chi.Router) {
			r.Use(authn, middleware.RequireApproval(logg))
			r.Post("/", controllers.PlaceCreate(svcs.Places, uploads, logg))
			r.Put("/{id}", controllers.PlaceUpdate(svcs.Places, uploads, logg))
			r.Delete("/{id}", controllers.PlaceDelete(svcs.Places, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Post("/{id}/like", controllers.PlaceToggleLike(svcs.Places, logg))
			r.Post("/{id}/comments", controllers.PlaceAddComment(svcs.Places, logg))
			r.Delete("/{id}/comments/{commentId}", controllers.PlaceDeleteComment(svcs.Places, logg))
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/places", controllers.UserPlaces(svcs.Places, radiusKm, logg))
			r.Get("/comments", controllers.UserComments(svcs.Places, logg))
			r.Put("/profile", controllers.UserUpdateProfile(svcs.Users, uploads, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn, middleware.RequireAdmin(logg))
			r.Get("/all", controllers.AdminListUsers(svcs.Approval, "", logg))
			r.Get("/pending", controllers.AdminListUsers(svcs.Approval, enums.ApprovalStatePending.String(), logg))
			r.Put("/approve/{id}", controllers.AdminApproveUser(svcs.Approval, logg))
			r.Delete("/reject/{id}", controllers.AdminRejectUser(svcs.Approval, logg))
			r.Put("/toggle-admin/{id}", controllers.AdminToggleAdmin(svcs.Approval, logg))
		})

		r.With(optionalAuthn).Get("/{id}", controllers.UserPublicProfile(svcs.Users, svcs.Places, logg))
	})

	return r
}
