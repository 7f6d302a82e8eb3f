package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vsuitehq/gigster-backend/internal/config"
	"github.com/vsuitehq/gigster-backend/internal/http/handlers"
	"github.com/vsuitehq/gigster-backend/internal/http/middleware"
	"github.com/vsuitehq/gigster-backend/internal/service"
)

// Handlers собирает все хэндлеры приложения для передачи в SetupRouter.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Client       *handlers.ClientHandler
	Project      *handlers.ProjectHandler
	Task         *handlers.TaskHandler
	TimeLog      *handlers.TimeLogHandler
	Template     *handlers.TemplateHandler
	Proposal     *handlers.ProposalHandler
	Invoice      *handlers.InvoiceHandler
	Payment      *handlers.PaymentHandler
	Contract     *handlers.ContractHandler
	Notification *handlers.NotificationHandler
	Dashboard    *handlers.DashboardHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
}

// SetupRouter настраивает все маршруты приложения.
func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", h.Auth.Logout)
		protectedAuth.GET("/me", h.Auth.Me)
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), h.Auth.RevokeSession)
		protectedAuth.DELETE("/sessions", h.Auth.RevokeOtherSessions)
	}

	// Публичные маршруты клиентских документов. Доступ по персональной
	// ссылке, без авторизации, с ограничением частоты запросов.
	shared := api.Group("/shared")
	shared.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		shared.GET("/proposals/:link", h.Proposal.ViewShared)
		shared.POST("/proposals/:link/respond", h.Proposal.RespondShared)
	}

	api.GET("/ws", h.WS.Handle)

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/dashboard", h.Dashboard.Summary)

		protected.POST("/clients", h.Client.Create)
		protected.GET("/clients", h.Client.List)
		protected.GET("/clients/:id", middleware.UUIDValidator("id"), h.Client.Get)
		protected.PUT("/clients/:id", middleware.UUIDValidator("id"), h.Client.Update)
		protected.DELETE("/clients/:id", middleware.UUIDValidator("id"), h.Client.Delete)

		protected.POST("/projects", h.Project.Create)
		protected.GET("/projects", h.Project.List)
		protected.GET("/projects/:id", middleware.UUIDValidator("id"), h.Project.Get)
		protected.PUT("/projects/:id", middleware.UUIDValidator("id"), h.Project.Update)
		protected.DELETE("/projects/:id", middleware.UUIDValidator("id"), h.Project.Delete)

		protected.POST("/tasks", h.Task.Create)
		protected.GET("/tasks", h.Task.List)
		protected.GET("/tasks/:id", middleware.UUIDValidator("id"), h.Task.Get)
		protected.PUT("/tasks/:id", middleware.UUIDValidator("id"), h.Task.Update)
		protected.DELETE("/tasks/:id", middleware.UUIDValidator("id"), h.Task.Delete)

		protected.POST("/timelogs/start", h.TimeLog.Start)
		protected.POST("/timelogs/stop", h.TimeLog.Stop)
		protected.GET("/timelogs/running", h.TimeLog.Running)
		protected.GET("/timelogs", h.TimeLog.List)
		protected.DELETE("/timelogs/:id", middleware.UUIDValidator("id"), h.TimeLog.Delete)

		protected.POST("/templates", h.Template.Create)
		protected.GET("/templates", h.Template.List)
		protected.POST("/templates/draft", h.Template.Draft)
		protected.GET("/templates/:id", middleware.UUIDValidator("id"), h.Template.Get)
		protected.PUT("/templates/:id", middleware.UUIDValidator("id"), h.Template.Update)
		protected.DELETE("/templates/:id", middleware.UUIDValidator("id"), h.Template.Delete)
		protected.POST("/templates/:id/preview", middleware.UUIDValidator("id"), h.Template.Preview)

		protected.POST("/proposals", h.Proposal.Create)
		protected.GET("/proposals", h.Proposal.List)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.Get)
		protected.PUT("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.Update)
		protected.DELETE("/proposals/:id", middleware.UUIDValidator("id"), h.Proposal.Delete)
		protected.POST("/proposals/:id/send", middleware.UUIDValidator("id"), h.Proposal.Send)
		protected.POST("/proposals/:id/create-revision", middleware.UUIDValidator("id"), h.Proposal.CreateRevision)

		protected.POST("/invoices", h.Invoice.Create)
		protected.GET("/invoices", h.Invoice.List)
		protected.GET("/invoices/overdue", h.Invoice.ListOverdue)
		protected.GET("/invoices/:id", middleware.UUIDValidator("id"), h.Invoice.Get)
		protected.PUT("/invoices/:id", middleware.UUIDValidator("id"), h.Invoice.Update)
		protected.DELETE("/invoices/:id", middleware.UUIDValidator("id"), h.Invoice.Delete)
		protected.POST("/invoices/:id/send", middleware.UUIDValidator("id"), h.Invoice.Send)
		protected.GET("/invoices/:id/payments", middleware.UUIDValidator("id"), h.Invoice.ListPayments)

		protected.POST("/payments", h.Payment.Create)

		protected.POST("/contracts", h.Contract.Create)
		protected.GET("/contracts", h.Contract.List)
		protected.GET("/contracts/needs-attention", h.Contract.NeedsAttention)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), h.Contract.Get)
		protected.PUT("/contracts/:id", middleware.UUIDValidator("id"), h.Contract.Update)
		protected.DELETE("/contracts/:id", middleware.UUIDValidator("id"), h.Contract.Delete)
		protected.POST("/contracts/:id/send", middleware.UUIDValidator("id"), h.Contract.Send)
		protected.POST("/contracts/:id/sign", middleware.UUIDValidator("id"), h.Contract.Sign)

		protected.GET("/notifications", h.Notification.List)
		protected.GET("/notifications/unread/count", h.Notification.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkRead)
		protected.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), h.Notification.Delete)
	}

	return r
}
