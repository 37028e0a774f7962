package handler

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/makkenzo/niches-hunter-api/internal/handler/middleware"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"github.com/makkenzo/niches-hunter-api/internal/metrics"
	"github.com/makkenzo/niches-hunter-api/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	APIKeys     *APIKeyHandler
	Dashboard   *DashboardHandler
	Billing     *BillingHandler
	Content     *ContentHandler
	Metered     *MeteredHandler
	Workspace   *WorkspaceHandler
	Validations *ValidationHandler
}

type RouterConfig struct {
	CORSOrigins []string
	CookieName  string
	AccessLog   bool
}

// NewRouter assembles the HTTP surface. The metered group runs
// authenticate and rate limit, then any route validation, then the charge.
func NewRouter(
	h Handlers,
	sessions middleware.TokenParser,
	metering *service.MeteringService,
	cfg RouterConfig,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	if cfg.AccessLog {
		router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC1123),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		}))
	}
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		logger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	}))

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Type",
				"Accept",
				"Authorization",
			},
			ExposeHeaders: []string{
				"Content-Length",
				"Retry-After",
				middleware.HeaderCreditsRemaining,
				middleware.HeaderCreditsUsed,
			},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(metrics.HTTPMiddleware())
	router.Use(middleware.ErrorHandlerMiddleware(logger))

	router.GET("/healthz", h.Health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	session := middleware.SessionMiddleware(sessions, cfg.CookieName, logger)
	optionalSession := middleware.OptionalSessionMiddleware(sessions, cfg.CookieName)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", h.Auth.Signup)
			authRoutes.POST("/login", h.Auth.Login)
			authRoutes.POST("/logout", h.Auth.Logout)
			authRoutes.GET("/session", session, h.Auth.Session)
			authRoutes.POST("/password/forgot", h.Auth.ForgotPassword)
			authRoutes.POST("/password/reset", h.Auth.ResetPassword)
		}

		api.GET("/niches", optionalSession, h.Content.ListNiches)
		api.GET("/niches/:code", optionalSession, h.Content.GetNiche)
		api.GET("/blog", h.Content.ListPosts)
		api.GET("/blog/:slug", h.Content.GetPost)
		api.POST("/subscribe", h.Content.Subscribe)

		api.POST("/webhooks/stripe", h.Billing.StripeWebhook)

		billingRoutes := api.Group("/billing")
		billingRoutes.Use(session)
		{
			billingRoutes.POST("/checkout", h.Billing.Checkout)
			billingRoutes.POST("/portal", h.Billing.Portal)
		}

		developerRoutes := api.Group("/developer")
		developerRoutes.Use(session)
		{
			developerRoutes.GET("/dashboard", h.Dashboard.GetSummary)
			developerRoutes.POST("/topup", h.Dashboard.TopUp)
			developerRoutes.GET("/keys", h.APIKeys.List)
			developerRoutes.POST("/keys", h.APIKeys.Create)
			developerRoutes.DELETE("/keys/:id", h.APIKeys.Revoke)
		}

		projectRoutes := api.Group("/projects")
		projectRoutes.Use(session)
		{
			projectRoutes.GET("", h.Workspace.ListProjects)
			projectRoutes.POST("", h.Workspace.CreateProject)
			projectRoutes.GET("/:id", h.Workspace.GetProject)
			projectRoutes.PATCH("/:id", h.Workspace.UpdateProject)
			projectRoutes.DELETE("/:id", h.Workspace.DeleteProject)

			projectRoutes.GET("/:id/tasks", h.Workspace.ListTasks)
			projectRoutes.POST("/:id/tasks", h.Workspace.CreateTask)
			projectRoutes.PATCH("/:id/tasks/:taskId", h.Workspace.UpdateTask)
			projectRoutes.DELETE("/:id/tasks/:taskId", h.Workspace.DeleteTask)

			projectRoutes.GET("/:id/notes", h.Workspace.ListNotes)
			projectRoutes.POST("/:id/notes", h.Workspace.CreateNote)
			projectRoutes.DELETE("/:id/notes/:noteId", h.Workspace.DeleteNote)
		}

		validationRoutes := api.Group("/validations")
		validationRoutes.Use(session)
		{
			validationRoutes.GET("", h.Validations.List)
			validationRoutes.POST("", h.Validations.Create)
		}

		charge := middleware.APIKeyChargeMiddleware(metering, logger)
		v1 := api.Group("/v1")
		v1.Use(middleware.APIKeyAuthMiddleware(metering, logger))
		{
			v1.GET("/niches", h.Metered.ValidateNicheList, charge, h.Metered.ListNiches)
			v1.GET("/niches/:code", charge, h.Metered.GetNiche)
			v1.GET("/opportunities", h.Metered.ValidateOpportunities, charge, h.Metered.Opportunities)
			v1.GET("/rankings", h.Metered.ValidateRankings, charge, h.Metered.Rankings)
			v1.GET("/categories", charge, h.Metered.Categories)
		}
	}

	return router
}
