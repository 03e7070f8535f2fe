package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Billing-api/internal/bootstrap"
	httpRouter "github.com/jhoicas/Billing-api/internal/interfaces/http"
	"github.com/jhoicas/Billing-api/pkg/config"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := bootstrap.NewLogger(cfg)
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	if cfg.Cron.Secret == "" {
		log.Warn().Msg("CRON_SECRET vacío: /api/cron/invoices responderá 503")
	}

	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer app.Close()

	server := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	server.Use(recover.New())
	server.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.URL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	server.Use(httpRouter.RequestLogger(log))
	server.Use(app.Metrics.Middleware())

	// Swagger UI en http://localhost:<port>/docs cuando el documento está presente
	if _, err := os.Stat(swaggerFile); err == nil {
		server.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name + " API",
		}))
	}

	httpRouter.Router(server, httpRouter.RouterDeps{
		AuthUC:       app.Auth,
		UserUC:       app.Users,
		RoleUC:       app.Roles,
		PermissionUC: app.Permissions,
		ClientUC:     app.Clients,
		InvoiceUC:    app.Invoices,
		PaymentUC:    app.Payments,
		PDFUC:        app.PDF,
		DashboardUC:  app.Dashboard,
		Reminders:    app.Reminders,
		Metrics:      app.Metrics,
		Log:          log,
		JWTSecret:    cfg.JWT.Secret,
		CronSecret:   cfg.Cron.Secret,
		ServiceName:  cfg.App.Name,
	})

	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
