package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-ReservationService/internal/migrate"
)

// NewMigrateCmd применяет встроенные SQL миграции
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Close()

			a, err := newApp(cfg, log, false)
			if err != nil {
				log.Error("Failed to initialize application: %v", err)
				return err
			}
			defer a.Close()

			applied, err := migrate.Up(cmd.Context(), a.db, a.txManager, log)
			if err != nil {
				log.Error("Migration failed: %v", err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}
