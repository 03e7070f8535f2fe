// Package bootstrap arma las dependencias compartidas por api, worker y billingctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	appanalytics "github.com/jhoicas/Billing-api/internal/application/analytics"
	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/internal/application/notification"
	apprbac "github.com/jhoicas/Billing-api/internal/application/rbac"
	"github.com/jhoicas/Billing-api/internal/application/usecase"
	"github.com/jhoicas/Billing-api/internal/infrastructure/mail"
	infrapdf "github.com/jhoicas/Billing-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Billing-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Billing-api/internal/infrastructure/queue"
	infraredis "github.com/jhoicas/Billing-api/internal/infrastructure/redis"
	infrastripe "github.com/jhoicas/Billing-api/internal/infrastructure/stripe"
	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
	"github.com/jhoicas/Billing-api/pkg/metrics"
)

// NewLogger logger de la aplicación según la configuración.
func NewLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{
		Env:        cfg.App.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}

// App repositorios, casos de uso e infraestructura ya conectados.
type App struct {
	Config  *config.Config
	Log     *logger.Logger
	Pool    *pgxpool.Pool
	Metrics *metrics.Metrics

	Mailer     notification.Mailer
	Dispatcher *notification.Dispatcher
	Queue      *queue.Client // nil sin Redis

	Auth        *auth.AuthUseCase
	Users       *usecase.UserUseCase
	Roles       *apprbac.RoleUseCase
	Permissions *apprbac.PermissionUseCase
	Clients     *billing.ClientUseCase
	Invoices    *billing.InvoiceUseCase
	Payments    *billing.PaymentUseCase
	PDF         *billing.PDFUseCase
	Dashboard   *appanalytics.DashboardUseCase
	Reminders   *billing.ReminderUseCase

	redis *goredis.Client
}

// New conecta PostgreSQL (y Redis si está configurado) y construye los casos de uso.
// Con Redis los emails se encolan en asynq y los recordatorios se deduplican con el ledger.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	a := &App{
		Config:  cfg,
		Log:     log,
		Pool:    pool,
		Metrics: metrics.New(cfg.Metrics.Namespace),
		Mailer:  mail.New(cfg.SMTP, log),
	}

	renderer, err := notification.NewRenderer(cfg.App.Name)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("plantillas de email: %w", err)
	}
	a.Dispatcher = notification.NewDispatcher(renderer, a.Mailer, cfg.App.URL, log, a.Metrics)

	var ledger billing.ReminderLedger
	if cfg.Redis.Enabled() {
		if a.redis, err = infraredis.NewClient(ctx, cfg.Redis); err != nil {
			a.Close()
			return nil, err
		}
		ledger = infraredis.NewReminderLedger(a.redis)
		a.Queue = queue.NewClient(cfg.Redis)
		a.Dispatcher.WithQueue(a.Queue)
		log.Info().Str("redis", cfg.Redis.Addr).Msg("emails por cola asynq y recordatorios deduplicados")
	}

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	permissionRepo := postgres.NewPermissionRepository(pool)
	tokenRepo := postgres.NewPasswordResetRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	loc := cfg.App.Location()

	a.Auth = auth.NewAuthUseCase(userRepo, roleRepo, tokenRepo, a.Dispatcher, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	a.Users = usecase.NewUserUseCase(txRunner, userRepo, roleRepo, tokenRepo, a.Dispatcher, log)
	a.Roles = apprbac.NewRoleUseCase(roleRepo, permissionRepo, userRepo)
	a.Permissions = apprbac.NewPermissionUseCase(permissionRepo)
	a.Clients = billing.NewClientUseCase(txRunner, clientRepo, invoiceRepo)
	a.Invoices = billing.NewInvoiceUseCase(txRunner, invoiceRepo, clientRepo, a.Dispatcher, a.Metrics, log)
	a.Payments = billing.NewPaymentUseCase(infrastripe.NewGateway(cfg.Stripe), invoiceRepo, clientRepo, a.Dispatcher,
		billing.PaymentConfig{
			PublishableKey: cfg.Stripe.PublishableKey,
			DefaultPriceID: cfg.Stripe.PriceID,
			AppURL:         cfg.App.URL,
		}, a.Metrics, log)
	a.PDF = billing.NewPDFUseCase(invoiceRepo, clientRepo, infrapdf.NewMarotoPDFGenerator(), cfg.App.Name)
	a.Dashboard = appanalytics.NewDashboardUseCase(analyticsRepo, clientRepo, loc)
	a.Reminders = billing.NewReminderUseCase(invoiceRepo, a.Dispatcher, loc, a.Metrics, log)
	if ledger != nil {
		a.Reminders.WithLedger(ledger)
	}
	return a, nil
}

// Close espera los emails en curso y cierra las conexiones.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("cerrar cliente asynq")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.Pool.Close()
}
