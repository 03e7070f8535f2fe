// Package redis implementa el registro de recordatorios enviados sobre Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	appbilling "github.com/jhoicas/Billing-api/internal/application/billing"
	"github.com/jhoicas/Billing-api/pkg/config"
)

var _ appbilling.ReminderLedger = (*ReminderLedger)(nil)

const (
	reminderPrefix = "reminder:"
	// reminderTTL cubre el día del envío con margen para reejecuciones tardías.
	reminderTTL = 72 * time.Hour
)

// NewClient abre la conexión y verifica que Redis responda.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: conectar a %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// ReminderLedger guarda una clave por (tipo, factura, día) con SETNX.
type ReminderLedger struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewReminderLedger construye el ledger sobre un cliente ya conectado.
func NewReminderLedger(client *goredis.Client) *ReminderLedger {
	return &ReminderLedger{client: client, ttl: reminderTTL}
}

// Claim registra el envío; devuelve false si otra ejecución ya lo registró.
func (l *ReminderLedger) Claim(ctx context.Context, kind, invoiceID string, day time.Time) (bool, error) {
	key := reminderKey(kind, invoiceID, day)
	ok, err := l.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: SETNX %s: %w", key, err)
	}
	return ok, nil
}

func reminderKey(kind, invoiceID string, day time.Time) string {
	return reminderPrefix + kind + ":" + invoiceID + ":" + day.Format("2006-01-02")
}
