package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Billing-api/internal/infrastructure/postgres"
)

var (
	seedAdminName     string
	seedAdminEmail    string
	seedAdminPassword string
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga el catálogo de permisos, los roles del sistema y opcionalmente el super admin",
		Long: `Carga el catálogo de permisos y los roles del sistema. Es idempotente.

Con --admin-email crea además el usuario super_admin inicial. La contraseña
se toma de --admin-password o de la variable SEED_ADMIN_PASSWORD.

Ejemplos:
  billingctl seed
  billingctl seed --admin-email admin@example.com --admin-password 's3cret0!'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			var admin *postgres.SeedAdmin
			if seedAdminEmail != "" {
				password := seedAdminPassword
				if password == "" {
					password = os.Getenv("SEED_ADMIN_PASSWORD")
				}
				if len(password) < 8 {
					return fmt.Errorf("la contraseña del super admin debe tener al menos 8 caracteres")
				}
				admin = &postgres.SeedAdmin{Name: seedAdminName, Email: seedAdminEmail, Password: password}
			}

			pool, err := postgres.NewPool(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()

			res, err := postgres.Seed(cmd.Context(), pool, admin)
			if err != nil {
				return err
			}
			log.Info().
				Int("permissions", res.Permissions).
				Int("roles", res.Roles).
				Str("admin_id", res.AdminID).
				Msg("seed completado")
			return nil
		},
	}

	cmd.Flags().StringVar(&seedAdminName, "admin-name", "Super Admin", "nombre del super admin")
	cmd.Flags().StringVar(&seedAdminEmail, "admin-email", "", "email del super admin (vacío = no se crea)")
	cmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "contraseña del super admin")
	return cmd
}
