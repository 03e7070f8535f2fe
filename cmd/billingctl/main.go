package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/bootstrap"
	"github.com/jhoicas/Billing-api/pkg/config"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "billingctl",
		Short:         "Tareas operativas de la API de facturación",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(remindCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return cfg, bootstrap.NewLogger(cfg).Named("billingctl"), nil
}
