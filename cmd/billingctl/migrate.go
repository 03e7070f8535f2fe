package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/infrastructure/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes del esquema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				log.Info().Msg("esquema al día")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "aplicada", v)
			}
			log.Info().Strs("versions", applied).Msg("migraciones aplicadas")
			return nil
		},
	}
}
