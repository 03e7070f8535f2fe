// Package queue integra asynq: cola de emails y ejecución programada de recordatorios.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/Billing-api/internal/application/notification"
)

// Tipos de tarea.
const (
	TypeEmailSend    = "email:send"
	TypeRemindersRun = "reminders:run"
)

// NewEmailTask serializa un email ya renderizado. Sin reintentos: el envío es best-effort.
func NewEmailTask(msg notification.Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("serializar email: %w", err)
	}
	return asynq.NewTask(TypeEmailSend, data, asynq.MaxRetry(0)), nil
}

// NewRemindersTask tarea sin payload; el worker usa la hora de ejecución.
func NewRemindersTask() *asynq.Task {
	return asynq.NewTask(TypeRemindersRun, nil, asynq.MaxRetry(0))
}
