package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the generated OpenAPI document with swag.
	_ "github.com/obralink/marketplace/docs"
	"github.com/obralink/marketplace/internal/api/handler"
	"github.com/obralink/marketplace/internal/api/middleware"
	"github.com/obralink/marketplace/internal/core/catalog"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
	"github.com/obralink/marketplace/internal/infrastructure/http/handlers"
)

// Deps carries everything the router wires into handlers. Construction of
// repositories and services happens in cmd/api.
type Deps struct {
	Log         zerolog.Logger
	JWTSecret   string
	CORSOrigins []string
	// BodyLimit caps request bodies, e.g. "12M". Empty disables the cap.
	BodyLimit string

	Auth        ports.AuthService
	Profiles    ports.ProfileService
	Projects    ports.ProjectService
	Proposals   ports.ProposalService
	Reviews     ports.ReviewService
	Messages    ports.MessageService
	Attachments ports.AttachmentService
	Feed        ports.FeedSubscriber
	Revoker     ports.TokenRevoker
	Catalog     *catalog.Catalog
	Readiness   map[string]handlers.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace: "marketplace",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))
	if d.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(d.BodyLimit))
	}

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Readiness).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Profiles)
	profileHandler := handler.NewProfileHandler(d.Profiles, d.Reviews)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	projectHandler := handler.NewProjectHandler(d.Projects)
	proposalHandler := handler.NewProposalHandler(d.Proposals)
	reviewHandler := handler.NewReviewHandler(d.Reviews)
	messageHandler := handler.NewMessageHandler(d.Messages, d.Feed)
	attachmentHandler := handler.NewAttachmentHandler(d.Attachments)

	clientOnly := middleware.RBAC(domain.RoleClient)
	engineerOnly := middleware.RBAC(domain.RoleEngineer)
	participants := middleware.RBAC(domain.RoleClient, domain.RoleEngineer)

	v1 := e.Group("/v1")
	v1.POST("/auth/signup", authHandler.SignUp)
	v1.POST("/auth/signin", authHandler.SignIn)
	v1.GET("/catalog", catalogHandler.Get)

	authed := v1.Group("", middleware.Auth(d.JWTSecret, d.Revoker))
	authed.POST("/auth/signout", authHandler.SignOut)
	authed.GET("/me", authHandler.Me)

	// --- Profiles ---
	authed.GET("/engineers", profileHandler.Engineers)
	authed.GET("/profiles/:id", profileHandler.Get)
	authed.PATCH("/profiles/:id", profileHandler.Update)
	authed.GET("/profiles/:id/reviews", profileHandler.Reviews)

	// --- Projects ---
	authed.POST("/projects", projectHandler.Create, clientOnly)
	authed.GET("/projects/mine", projectHandler.Mine, clientOnly)
	authed.GET("/projects/open", projectHandler.Open, engineerOnly)
	authed.GET("/projects/:id", projectHandler.Get)
	authed.POST("/projects/:id/complete", projectHandler.Complete, clientOnly)
	authed.POST("/projects/:id/cancel", projectHandler.Cancel, clientOnly)

	// --- Proposals ---
	authed.POST("/projects/:id/proposals", proposalHandler.Submit, engineerOnly)
	authed.GET("/proposals/mine", proposalHandler.Mine, engineerOnly)
	authed.GET("/proposals/:id", proposalHandler.Get)
	authed.POST("/proposals/:id/accept", proposalHandler.Accept, clientOnly)
	authed.POST("/proposals/:id/reject", proposalHandler.Reject, clientOnly)
	authed.POST("/proposals/:id/negotiate", proposalHandler.Negotiate, participants)
	authed.POST("/proposals/:id/withdraw", proposalHandler.Withdraw, engineerOnly)

	// --- Reviews ---
	authed.POST("/projects/:id/reviews", reviewHandler.Submit)
	authed.GET("/projects/:id/reviews", reviewHandler.List)

	// --- Messages ---
	authed.GET("/projects/:id/messages", messageHandler.List)
	authed.POST("/projects/:id/messages", messageHandler.Send)
	authed.GET("/projects/:id/messages/stream", messageHandler.Stream)

	// --- Files ---
	authed.POST("/projects/:id/files", attachmentHandler.Upload)
	authed.GET("/projects/:id/files", attachmentHandler.List)
	authed.DELETE("/files/:id", attachmentHandler.Delete)

	return e
}

// requestLogger logs one structured line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
