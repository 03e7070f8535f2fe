package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	appanalytics "github.com/jhoicas/Billing-api/internal/application/analytics"
	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	apprbac "github.com/jhoicas/Billing-api/internal/application/rbac"
	"github.com/jhoicas/Billing-api/internal/application/usecase"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	RoleUC       *apprbac.RoleUseCase
	PermissionUC *apprbac.PermissionUseCase
	ClientUC     *billing.ClientUseCase
	InvoiceUC    *billing.InvoiceUseCase
	PaymentUC    *billing.PaymentUseCase
	PDFUC        *billing.PDFUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	Reminders    ReminderRunner
	Metrics      *metrics.Metrics
	Log          *logger.Logger
	JWTSecret    string
	CronSecret   string
	ServiceName  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	api := app.Group("/api")

	// Públicos: webhook firmado y cron con secreto compartido
	api.Post("/webhooks/stripe", NewWebhookHandler(deps.PaymentUC, deps.Log).Stripe)
	api.Get("/cron/invoices", NewCronHandler(deps.Reminders, deps.CronSecret, deps.Log).Invoices)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	requireAuth := AuthMiddleware(deps.JWTSecret)
	authGroup.Get("/me", requireAuth, authHandler.Me)
	authGroup.Post("/refresh", requireAuth, authHandler.Refresh)
	authGroup.Put("/password", requireAuth, authHandler.ChangePassword)
	authGroup.Put("/profile", requireAuth, authHandler.UpdateProfile)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", requireAuth)

	// Permissions: el listado lo ve cualquier sesión (solo activos sin permission.view)
	permissionHandler := NewPermissionHandler(deps.PermissionUC)
	permissions := protected.Group("/permissions")
	permissions.Get("/", permissionHandler.List)
	permissions.Get("/:id", RequirePermission("permission.view"), permissionHandler.GetByID)
	permissions.Post("/", RequirePermission("permission.create"), permissionHandler.Create)
	permissions.Put("/:id", RequirePermission("permission.edit"), permissionHandler.Update)
	permissions.Delete("/:id", RequirePermission("permission.delete"), permissionHandler.Delete)

	// Roles
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles := protected.Group("/roles")
	roles.Get("/", RequirePermission("role.view"), roleHandler.List)
	roles.Get("/:id", RequirePermission("role.view"), roleHandler.GetByID)
	roles.Post("/", RequirePermission("role.create"), roleHandler.Create)
	roles.Put("/:id", RequirePermission("role.edit"), roleHandler.Update)
	roles.Delete("/:id", RequirePermission("role.delete"), roleHandler.Delete)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	users := protected.Group("/users")
	users.Get("/", RequirePermission("user.view"), userHandler.List)
	users.Get("/:id", RequirePermission("user.view"), userHandler.GetByID)
	users.Post("/", RequirePermission("user.create"), userHandler.Create)
	users.Put("/:id", RequirePermission("user.edit"), userHandler.Update)
	users.Delete("/:id", RequirePermission("user.delete"), userHandler.Delete)

	// Clients
	clientHandler := NewClientHandler(deps.ClientUC)
	clients := protected.Group("/clients")
	clients.Get("/", RequirePermission("client.view"), clientHandler.List)
	clients.Get("/:id", RequirePermission("client.view"), clientHandler.GetByID)
	clients.Post("/", RequirePermission("client.create"), clientHandler.Create)
	clients.Put("/:id", RequirePermission("client.edit"), clientHandler.Update)
	clients.Delete("/:id", RequirePermission("client.delete"), clientHandler.Delete)

	// Invoices
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.PaymentUC, deps.PDFUC)
	invoices := protected.Group("/invoices")
	invoices.Get("/", RequirePermission("invoice.view"), invoiceHandler.List)
	invoices.Post("/", RequirePermission("invoice.create"), invoiceHandler.Create)
	invoices.Get("/:id", RequirePermission("invoice.view"), invoiceHandler.GetByID)
	invoices.Delete("/:id", RequirePermission("invoice.delete"), invoiceHandler.Delete)
	invoices.Patch("/:id/status", RequirePermission("invoice.edit"), invoiceHandler.UpdateStatus)
	invoices.Post("/:id/payment-intent", RequirePermission("invoice.pay"), invoiceHandler.PaymentIntent)
	invoices.Get("/:id/pdf", RequirePermission("invoice.view"), invoiceHandler.PDF)

	// Billing portal / checkout
	billingHandler := NewBillingHandler(deps.PaymentUC)
	billingGroup := protected.Group("/billing")
	billingGroup.Post("/portal", RequirePermission("invoice.pay"), billingHandler.Portal)
	billingGroup.Post("/checkout", RequirePermission("invoice.pay"), billingHandler.Checkout)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", RequirePermission("invoice.view"), dashboardHandler.GetSummary)
}
