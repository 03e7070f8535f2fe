package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// NewServer servidor de asynq con colas por prioridad.
func NewServer(cfg config.RedisConfig, concurrency int, log *logger.Logger) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 5
	}
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
		Logger: asynqLogger{log.Named("asynq")},
	})
}

// ValidateSchedule comprueba que spec sea una expresión cron estándar de 5 campos.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("REMINDER_CRON %q inválido: %w", spec, err)
	}
	return nil
}

// NewScheduler registra la ejecución periódica de recordatorios en la zona horaria dada.
func NewScheduler(cfg config.RedisConfig, spec string, loc *time.Location, log *logger.Logger) (*asynq.Scheduler, error) {
	if err := ValidateSchedule(spec); err != nil {
		return nil, err
	}
	s := asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{
		Location: loc,
		Logger:   asynqLogger{log.Named("scheduler")},
	})
	if _, err := s.Register(spec, NewRemindersTask()); err != nil {
		return nil, fmt.Errorf("registrar recordatorios: %w", err)
	}
	return s, nil
}

// asynqLogger adapta el logger de la aplicación a asynq.Logger.
type asynqLogger struct {
	log *logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
