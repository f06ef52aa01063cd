package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	createReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/create_reservation"
	getAvailabilityHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_availability"
	getReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_reservation"
	getSettingsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/get_settings"
	"github.com/m04kA/SMC-ReservationService/internal/api/handlers/health"
	listReservationsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/list_reservations"
	updateReservationHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation"
	updateReservationStatusHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_reservation_status"
	updateSettingsHandler "github.com/m04kA/SMC-ReservationService/internal/api/handlers/update_settings"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	reservationsService "github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	expireHoldsUC "github.com/m04kA/SMC-ReservationService/internal/usecase/expire_holds"
	getAvailabilityUC "github.com/m04kA/SMC-ReservationService/internal/usecase/get_availability"
	"github.com/m04kA/SMC-ReservationService/internal/worker/sweeper"
)

// NewServeCmd запускает HTTP API и фоновый sweep просроченных холдов
func NewServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Close()

	if err := cfg.ValidateServe(); err != nil {
		log.Error("Invalid configuration: %v", err)
		return err
	}

	a, err := newApp(cfg, log, true)
	if err != nil {
		log.Error("Failed to initialize application: %v", err)
		return err
	}
	defer a.Close()

	location := cfg.Location()
	log.Info("Restaurant timezone: %s", location)

	// Инициализируем сервисы
	reservationSvc := reservationsService.NewService(
		a.reservationRepo,
		a.settings,
		a.publisher,
		a.txManager,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		a.reservationRepo,
		a.settings,
		a.publisher,
		a.metrics,
		a.txManager,
		location,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		a.reservationRepo,
		a.settings,
		a.txManager,
		location,
		log,
	)
	expireHoldsUseCase := expireHoldsUC.NewUseCase(
		a.reservationRepo,
		a.publisher,
		a.metrics,
		a.txManager,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	listReservations := listReservationsHandler.NewHandler(reservationSvc, log)
	updateStatus := updateReservationStatusHandler.NewHandler(reservationSvc, log)
	updateReservation := updateReservationHandler.NewHandler(reservationSvc, log)
	getSettings := getSettingsHandler.NewHandler(a.settings, log)
	updateSettings := updateSettingsHandler.NewHandler(a.settings, log)

	checks := []health.Check{{Name: "postgres", Ping: a.reservationRepo.Ping}}
	if a.redis != nil {
		checks = append(checks, health.Check{
			Name:     "redis",
			Ping:     func(ctx context.Context) error { return a.redis.Ping(ctx).Err() },
			Optional: true,
		})
	}
	healthHandler := health.NewHandler(log, checks...)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if a.metrics != nil {
		r.Use(middleware.MetricsMiddleware(a.metrics))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthHandler.Live).Methods(http.MethodGet)
	r.HandleFunc("/readyz", healthHandler.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	// Доступные слоты на дату
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Создание брони
	api.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Текущие настройки бронирования
	api.HandleFunc("/settings", getSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (X-Admin-Token)
	// ============================================================

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminOnly(cfg.Admin.Token))

	admin.HandleFunc("/reservations", listReservations.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/reservations/{reservationId}", updateReservation.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/reservations/{reservationId}/status", updateStatus.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/settings", updateSettings.Handle).Methods(http.MethodPut)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Sweep просроченных холдов
	sweepDone := make(chan struct{})
	if interval := cfg.SweepInterval(); interval > 0 {
		go func() {
			defer close(sweepDone)
			_ = sweeper.New(expireHoldsUseCase, interval, log).Run(ctx)
		}()
	} else {
		close(sweepDone)
		log.Warn("Hold sweep disabled (reservations.sweep_interval = 0)")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Ожидаем сигнал завершения или падение сервера
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed: %v", err)
		stop()
		<-sweepDone
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
	<-sweepDone

	log.Info("Server stopped gracefully")
	return nil
}
