package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	expireHoldsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/expire_holds"
)

// NewSweepCmd однократно отменяет просроченные холды (для cron)
func NewSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Cancel expired pending holds once and exit",
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

			uc := expireHoldsUC.NewUseCase(a.reservationRepo, a.publisher, a.metrics, a.txManager, log)
			resp, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d expired hold(s)\n", len(resp.CancelledIDs))
			return nil
		},
	}
}
