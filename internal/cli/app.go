package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/cache"
	"github.com/m04kA/SMC-ReservationService/internal/infra/events"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	settingsRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/settings"
	settingsService "github.com/m04kA/SMC-ReservationService/internal/service/settings"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/metrics"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

const startupPingTimeout = 5 * time.Second

// eventPublisher Kafka или no-op
type eventPublisher interface {
	PublishCreated(ctx context.Context, r *domain.Reservation) error
	PublishStatusChanged(ctx context.Context, r *domain.Reservation, previous domain.ReservationStatus) error
	PublishExpired(ctx context.Context, r *domain.Reservation) error
	Close() error
}

// app общие зависимости команд
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics

	sqlDB       *sql.DB
	db          *dbmetrics.DB
	stopMetrics chan struct{}
	txManager   *txmanager.TransactionManager

	reservationRepo *reservationRepo.Repository
	settingsRepo    *settingsRepo.Repository
	redis           *redis.Client
	publisher       eventPublisher
	settings        *settingsService.Service
}

// loadConfig конфигурация и логгер
func loadConfig(path string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// newApp подключается к БД, Redis и Kafka и собирает репозитории.
// withMetrics регистрирует Prometheus метрики (только для serve).
func newApp(cfg *config.Config, log *logger.Logger, withMetrics bool) (*app, error) {
	a := &app{
		cfg:         cfg,
		log:         log,
		stopMetrics: make(chan struct{}),
	}

	if withMetrics && cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), startupPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	a.sqlDB = db
	if a.metrics != nil {
		a.db = dbmetrics.WrapWithDefault(db, a.metrics, a.stopMetrics)
		log.Info("Database metrics collection started")
	} else {
		a.db = dbmetrics.Wrap(db, nil)
	}
	a.txManager = txmanager.NewTransactionManager(a.db)
	a.reservationRepo = reservationRepo.NewRepository(a.db)
	a.settingsRepo = settingsRepo.NewRepository(a.db)

	// Кеш настроек (опционально)
	var settingsCache settingsService.SettingsCache
	if cfg.Redis.Enabled() {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			// Кеш не обязателен: сервис читает настройки из БД, пока Redis недоступен
			log.Warn("Redis ping failed, settings cache degraded: %v", err)
		}
		settingsCache = cache.NewSettingsCache(a.redis, cfg.Redis.KeyPrefix, time.Duration(cfg.Redis.TTL)*time.Second)
		log.Info("Settings cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// События (опционально)
	if cfg.Kafka.Enabled() {
		brokers := events.SplitBrokers(cfg.Kafka.Brokers)
		writer := events.NewKafkaWriter(brokers, time.Duration(cfg.Kafka.WriteTimeout)*time.Second)
		a.publisher = events.NewPublisher(writer, cfg.Kafka.TopicPrefix)
		log.Info("Kafka publisher enabled (brokers=%v)", brokers)
	} else {
		a.publisher = events.NoopPublisher{}
	}

	a.settings = settingsService.NewService(a.settingsRepo, settingsCache, a.metrics, log)
	return a, nil
}

func (a *app) Close() {
	close(a.stopMetrics)
	if err := a.publisher.Close(); err != nil {
		a.log.Error("Failed to close event publisher: %v", err)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.sqlDB.Close()
}
