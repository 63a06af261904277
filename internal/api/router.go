package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/fitcentre/internal/app"
	iauth "github.com/charlesng35/fitcentre/internal/auth"
	"github.com/charlesng35/fitcentre/internal/cache"
	"github.com/charlesng35/fitcentre/internal/handlers"
	"github.com/charlesng35/fitcentre/internal/middleware"
	"github.com/charlesng35/fitcentre/internal/models"
	"github.com/charlesng35/fitcentre/internal/monitoring"
	"github.com/charlesng35/fitcentre/internal/permissions"
	"github.com/charlesng35/fitcentre/internal/security"
	"github.com/charlesng35/fitcentre/internal/services"
	"github.com/charlesng35/fitcentre/pkg/mail"
)

// Dependencies are the shared resources the HTTP layer is built from.
type Dependencies struct {
	DB     *gorm.DB
	JWT    *iauth.JWTService
	Mailer mail.Mailer
	Config *app.Config
	// Cache backs the OTP rate limiter and is probed by /health. Optional.
	Cache cache.Store
	// RateStore overrides the limiter backend derived from Cache.
	RateStore middleware.RateStore
	// LifecycleOptions are appended after the options derived from Config.
	LifecycleOptions []services.LifecycleOption
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, errors.New("router: database handle must be provided")
	}
	if deps.JWT == nil {
		return nil, errors.New("router: jwt service must be provided")
	}
	if deps.Mailer == nil {
		return nil, errors.New("router: mailer must be provided")
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &app.Config{}
	}

	resolver, err := permissions.NewResolver(deps.DB)
	if err != nil {
		return nil, err
	}

	lifecycleOpts := append(cfg.Auth.LifecycleOptions(), deps.LifecycleOptions...)
	lifecycle, err := services.NewLifecycleService(deps.DB, deps.Mailer, lifecycleOpts...)
	if err != nil {
		return nil, err
	}
	authSvc, err := services.NewAuthService(deps.DB, deps.JWT, resolver, lifecycle)
	if err != nil {
		return nil, err
	}
	profileSvc, err := services.NewProfileService(deps.DB)
	if err != nil {
		return nil, err
	}
	roleSvc, err := services.NewRoleService(deps.DB)
	if err != nil {
		return nil, err
	}
	accountSvc, err := services.NewAccountService(deps.DB)
	if err != nil {
		return nil, err
	}
	adSvc, err := services.NewAdvertisementService(deps.DB)
	if err != nil {
		return nil, err
	}
	workoutSvc, err := services.NewWorkoutService(deps.DB)
	if err != nil {
		return nil, err
	}

	authHandler, err := handlers.NewAuthHandler(authSvc, lifecycle)
	if err != nil {
		return nil, err
	}
	profileHandler, err := handlers.NewProfileHandler(profileSvc, resolver)
	if err != nil {
		return nil, err
	}
	roleHandler, err := handlers.NewRoleHandler(roleSvc)
	if err != nil {
		return nil, err
	}
	accountHandler, err := handlers.NewAccountHandler(accountSvc)
	if err != nil {
		return nil, err
	}
	adHandler, err := handlers.NewAdvertisementHandler(adSvc)
	if err != nil {
		return nil, err
	}
	workoutHandler, err := handlers.NewWorkoutHandler(workoutSvc)
	if err != nil {
		return nil, err
	}
	securityHandler, err := handlers.NewSecurityHandler(security.NewAuditService(deps.DB, cfg))
	if err != nil {
		return nil, err
	}

	rateStore := deps.RateStore
	if rateStore == nil && deps.Cache != nil {
		rateStore = middleware.NewCacheRateStore(deps.Cache)
	}
	otpWindow := cfg.RateLimit.OTPWindow
	if otpWindow <= 0 {
		otpWindow = 10 * time.Minute
	}
	otpLimit := middleware.RateLimit(rateStore, cfg.RateLimit.OTPRequests, otpWindow)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins...))

	checker := monitoring.NewChecker(0)
	checker.Register(monitoring.DatabaseCheck(deps.DB))
	if deps.Cache != nil {
		checker.Register(monitoring.CacheCheck(deps.Cache))
	}
	checker.Register(monitoring.MaintenanceCheck(nil, cfg.Maintenance.StaleAfter))
	registerHealthRoutes(r, checker)

	requireAuth := middleware.Auth(deps.JWT)

	registerAuthRoutes(r, authRouteDeps{
		Handler:     authHandler,
		RequireAuth: requireAuth,
		OTPLimit:    otpLimit,
	})

	api := r.Group("/api")
	registerAdvertisementRoutes(api, adHandler)

	protected := api.Group("")
	protected.Use(requireAuth)
	protected.GET("/permissions/my", profileHandler.MyPermissions)
	protected.GET("/profile", profileHandler.Get)
	protected.PATCH("/profile", profileHandler.Update)
	registerWorkoutRoutes(protected, workoutHandler)

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequirePlatform(models.PlatformAdminPortal))
	registerAdminRoutes(admin, adminRouteDeps{
		Resolver: resolver,
		Profile:  profileHandler,
		Roles:    roleHandler,
		Accounts: accountHandler,
		Ads:      adHandler,
		Security: securityHandler,
	})

	// NotFound fallback
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFoundHandler)
	r.NoMethod(middleware.MethodNotAllowedHandler)

	return r, nil
}
