package api

import (
	"database/sql"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/keralahub/culturalhub/docs"
	"github.com/keralahub/culturalhub/internal/api/handler"
	"github.com/keralahub/culturalhub/internal/api/middleware"
	"github.com/keralahub/culturalhub/internal/core/domain"
	"github.com/keralahub/culturalhub/internal/core/ports"
	"github.com/keralahub/culturalhub/internal/session"
)

// Deps carries everything the router needs. The pieces are constructed in
// main so their lifecycles (worker pools, connections) outlive any single
// request.
type Deps struct {
	DB        *sql.DB
	Redis     *redis.Client
	JWTSecret string
	Log       zerolog.Logger

	Registry *session.Registry
	Auth     ports.AuthService
	Demos    ports.DemoStore
	Profiles ports.ProfileService
	Events   ports.EventService
	Artists  ports.ArtistService
	Content  ports.ContentService
	Payments ports.PaymentService

	WebhookVerifier handler.WebhookVerifier
	PaymentQueue    handler.EventQueue
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("culturalhub"))
	e.Use(middleware.Auth(d.JWTSecret))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Registry, d.Auth, d.Demos)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	eventHandler := handler.NewEventHandler(d.Events)
	artistHandler := handler.NewArtistHandler(d.Artists)
	contentHandler := handler.NewContentHandler(d.Content)
	paymentHandler := handler.NewPaymentHandler(d.Payments, d.WebhookVerifier, d.PaymentQueue)

	// --- Route guards ---
	anyIdentity := middleware.Guard(d.Registry, d.Demos, middleware.GuardOptions{})
	memberOnly := middleware.Guard(d.Registry, d.Demos, middleware.GuardOptions{
		Roles: []domain.Role{domain.RoleVisitor, domain.RoleArtist, domain.RoleOrganizer, domain.RoleAdmin},
	})
	organizerWrite := middleware.Guard(d.Registry, d.Demos, middleware.GuardOptions{
		Roles: []domain.Role{domain.RoleOrganizer, domain.RoleAdmin},
	})
	organizerDashboard := middleware.Guard(d.Registry, d.Demos, middleware.GuardOptions{
		Roles:     []domain.Role{domain.RoleOrganizer, domain.RoleAdmin},
		AllowDemo: true,
	})

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1")

	// --- Auth ---
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/logout", authHandler.Logout)
	v1.GET("/auth/session", authHandler.Session)
	v1.GET("/auth/oauth/:provider", authHandler.OAuth)
	v1.POST("/auth/demo", authHandler.DemoSignIn)

	// --- Public catalog ---
	v1.GET("/events", eventHandler.List)
	v1.GET("/events/:id", eventHandler.Get)
	v1.GET("/events/:id/artists", artistHandler.ListByEvent)
	v1.GET("/artists", artistHandler.List)
	v1.GET("/artists/:id", artistHandler.Get)
	v1.GET("/content", contentHandler.List)
	v1.GET("/content/:slug", contentHandler.Get)

	// --- Checkout (guest checkout allowed, identity attached when present) ---
	v1.POST("/payments/intent", paymentHandler.CreateIntent)
	v1.POST("/payments/webhook", paymentHandler.Webhook)

	// --- Signed-in surface ---
	v1.GET("/me", profileHandler.Me, memberOnly)
	v1.PUT("/me", profileHandler.Update, memberOnly)
	v1.POST("/me/avatar", profileHandler.UploadAvatar, memberOnly)
	v1.GET("/me/orders", paymentHandler.ListOrders, anyIdentity)
	v1.GET("/me/tickets", paymentHandler.ListTickets, anyIdentity)

	// --- Organizer surface ---
	v1.GET("/events/mine", eventHandler.ListMine, organizerDashboard)
	v1.POST("/events", eventHandler.Create, organizerWrite)
	v1.PUT("/events/:id", eventHandler.Update, organizerWrite)
	v1.PUT("/events/:id/publish", eventHandler.Publish, organizerWrite)
	v1.POST("/events/:id/artists", eventHandler.LinkArtist, organizerWrite)
	v1.DELETE("/events/:id/artists/:artist_id", eventHandler.UnlinkArtist, organizerWrite)

	return e
}
