package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/bootstrap"
)

var (
	remindDate    string
	remindEnqueue bool
)

func remindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Ejecuta el job de recordatorios de vencimiento",
		Long: `Envía los recordatorios de facturas PENDING que vencen en 2 días y los avisos
de las que vencieron ayer.

Ejemplos:
  billingctl remind
  billingctl remind --date 2025-03-29
  billingctl remind --enqueue   # delega la ejecución al worker`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			now := time.Now()
			if remindDate != "" {
				if remindEnqueue {
					return fmt.Errorf("--date y --enqueue son excluyentes")
				}
				if now, err = time.ParseInLocation("2006-01-02", remindDate, cfg.App.Location()); err != nil {
					return fmt.Errorf("--date debe tener formato YYYY-MM-DD: %w", err)
				}
			}

			app, err := bootstrap.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			if remindEnqueue {
				if app.Queue == nil {
					return fmt.Errorf("--enqueue requiere REDIS_ADDR")
				}
				id, err := app.Queue.EnqueueReminders(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "tarea encolada", id)
				return nil
			}

			res, err := app.Reminders.Run(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reminders_sent=%d overdue_sent=%d\n", res.RemindersSent, res.OverdueSent)
			return nil
		},
	}

	cmd.Flags().StringVar(&remindDate, "date", "", "día de referencia YYYY-MM-DD (por defecto hoy)")
	cmd.Flags().BoolVar(&remindEnqueue, "enqueue", false, "encolar en asynq en vez de ejecutar aquí")
	return cmd
}
