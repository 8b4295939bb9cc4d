package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/sjajred-backend/internal/api/handlers"
	"github.com/welldanyogia/sjajred-backend/internal/api/middleware"
	"github.com/welldanyogia/sjajred-backend/internal/logger"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB        *gorm.DB // nil on the file backend
	Inquiries handlers.InquiryService
	Catalog   handlers.CatalogService
	Sessions  handlers.SessionService
	Resolver  middleware.SessionResolver
	Assistant handlers.Assistant

	Persistence handlers.PersistenceReporter
	Handoff     handlers.HandoffReporter // nil when email handoff is disabled
	MailSink    handlers.MailCatcher     // development only

	Logger         *slog.Logger
	SecurityLogger *logger.SecurityLogger
	AllowedOrigins []string
	RateLimiter    *middleware.IPRateLimiter // nil disables rate limiting
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware order matters: recover first, identity last
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.AllowedOrigins))
	if cfg.RateLimiter != nil {
		e.Use(middleware.RateLimiter(cfg.RateLimiter, cfg.SecurityLogger))
	}
	e.Use(middleware.Identity(cfg.Resolver, cfg.SecurityLogger))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Persistence, cfg.Handoff)
	authHandler := handlers.NewAuthHandler(cfg.Sessions, cfg.SecurityLogger)
	cleanerHandler := handlers.NewCleanerHandler(cfg.Catalog)
	inquiryHandler := handlers.NewInquiryHandler(cfg.Inquiries, cfg.Catalog, cfg.SecurityLogger)
	inboxHandler := handlers.NewInboxHandler(cfg.Inquiries)
	metaHandler := handlers.NewMetaHandler()
	assistHandler := handlers.NewAssistHandler(cfg.Assistant)

	requireUser := middleware.RequireUser()

	// Health routes
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	if cfg.MailSink != nil {
		e.GET("/dev/mail", handlers.NewDevMailHandler(cfg.MailSink).List)
	}

	api := e.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me)

	// Cleaner routes
	cleaners := api.Group("/cleaners")
	cleaners.GET("", cleanerHandler.List)
	cleaners.GET("/:id", cleanerHandler.Get)
	cleaners.POST("", cleanerHandler.Create, requireUser)
	cleaners.POST("/:id/reviews", cleanerHandler.AddReview, requireUser)
	cleaners.POST("/:id/inquiries", inquiryHandler.OpenForCleaner, requireUser)

	// Inquiry routes
	inquiries := api.Group("/inquiries")
	inquiries.POST("", inquiryHandler.Open, requireUser)
	inquiries.GET("/:id", inquiryHandler.Get)
	inquiries.PATCH("/:id/read", inquiryHandler.MarkRead)
	inquiries.POST("/:id/replies", inquiryHandler.Reply, requireUser)
	inquiries.DELETE("/:id", inquiryHandler.Delete)

	// Inbox routes
	inbox := api.Group("/inbox")
	inbox.GET("/received", inboxHandler.Received, requireUser)
	inbox.GET("/sent", inboxHandler.Sent, requireUser)
	inbox.GET("/unread-count", inboxHandler.UnreadCount)

	// Option lists
	meta := api.Group("/meta")
	meta.GET("/cities", metaHandler.Cities)
	meta.GET("/services", metaHandler.Services)

	// Text assistance
	assist := api.Group("/assist")
	assist.POST("/bio", assistHandler.Bio)
	assist.POST("/services", assistHandler.Services)

	return e
}
