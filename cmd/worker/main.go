package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Billing-api/internal/bootstrap"
	"github.com/jhoicas/Billing-api/internal/infrastructure/queue"
	"github.com/jhoicas/Billing-api/pkg/config"
)

// worker procesa la cola de emails y programa el job de recordatorios (requiere REDIS_ADDR).
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := bootstrap.NewLogger(cfg).Named("worker")
	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}

	app, err := bootstrap.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer app.Close()

	scheduler, err := queue.NewScheduler(cfg.Redis, cfg.Cron.Schedule, cfg.App.Location(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("scheduler de recordatorios")
	}
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("iniciar scheduler")
	}
	defer scheduler.Shutdown()

	// El worker envía directamente: sus emails no vuelven a la cola.
	handler := queue.NewHandler(app.Mailer, app.Reminders, app.Metrics, log)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	srv := queue.NewServer(cfg.Redis, 10, log)
	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("iniciar servidor asynq")
	}
	log.Info().Str("schedule", cfg.Cron.Schedule).Str("timezone", cfg.App.Location().String()).Msg("worker iniciado")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, deteniendo worker...")
	srv.Shutdown()
	log.Info().Msg("worker detenido")
}
