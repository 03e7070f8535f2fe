package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Billing-api/internal/application/notification"
	"github.com/jhoicas/Billing-api/pkg/config"
)

var _ notification.Enqueuer = (*Client)(nil)

// RedisOpt opciones de conexión de asynq a partir de la configuración.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// Client encola tareas de email.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente de asynq.
func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

// EnqueueEmail implementa notification.Enqueuer.
func (c *Client) EnqueueEmail(ctx context.Context, msg notification.Message) error {
	task, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("encolar email %s: %w", msg.Kind, err)
	}
	return nil
}

// EnqueueReminders encola una ejecución inmediata del job de recordatorios.
func (c *Client) EnqueueReminders(ctx context.Context) (string, error) {
	info, err := c.client.EnqueueContext(ctx, NewRemindersTask())
	if err != nil {
		return "", fmt.Errorf("encolar recordatorios: %w", err)
	}
	return info.ID, nil
}

// Close cierra la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
