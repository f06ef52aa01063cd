package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса (config.toml)
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Redis        RedisConfig        `toml:"redis"`
	Kafka        KafkaConfig        `toml:"kafka"`
	Reservations ReservationsConfig `toml:"reservations"`
	Admin        AdminConfig        `toml:"admin"`
}

// ServerConfig HTTP сервер, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type LogsConfig struct {
	File  string `toml:"file"` // пусто - stdout
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// RedisConfig кеш настроек; пустой addr выключает кеш
type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	KeyPrefix string `toml:"key_prefix"`
	TTL       int    `toml:"ttl"` // секунды
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// KafkaConfig события бронирований; пустой brokers выключает публикацию
type KafkaConfig struct {
	Brokers      string `toml:"brokers"` // через запятую
	TopicPrefix  string `toml:"topic_prefix"`
	WriteTimeout int    `toml:"write_timeout"` // секунды
}

func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

type ReservationsConfig struct {
	Timezone      string `toml:"timezone"`       // IANA, например "Europe/Moscow"
	SweepInterval int    `toml:"sweep_interval"` // секунды; 0 выключает sweep в serve
}

type AdminConfig struct {
	Token string `toml:"token"`
}

// Load читает конфигурацию из файла, применяет значения по умолчанию,
// переменные окружения и проверяет результат
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация для локального запуска
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "reservations",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "reservation-service",
			Path:        "/metrics",
		},
		Redis: RedisConfig{
			KeyPrefix: "reservations",
			TTL:       300,
		},
		Kafka: KafkaConfig{
			WriteTimeout: 5,
		},
		Reservations: ReservationsConfig{
			Timezone:      "UTC",
			SweepInterval: 60,
		},
	}
}

// Секреты из окружения имеют приоритет над файлом
func (c *Config) applyEnv() {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
}

func (c *Config) applyDefaults() {
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Reservations.Timezone == "" {
		c.Reservations.Timezone = "UTC"
	}
}

// Validate проверяет обязательные поля и диапазоны
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port %d out of range", c.Server.HTTPPort))
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		problems = append(problems, "database.host and database.dbname are required")
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		problems = append(problems, "database pool sizes must not be negative")
	}
	if c.Reservations.SweepInterval < 0 {
		problems = append(problems, "reservations.sweep_interval must not be negative")
	}
	if _, err := time.LoadLocation(c.Reservations.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("reservations.timezone %q: %v", c.Reservations.Timezone, err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateServe дополнительные требования команды serve: без токена админские маршруты не поднимаются
func (c *Config) ValidateServe() error {
	if c.Admin.Token == "" {
		return fmt.Errorf("%w: admin.token (or ADMIN_TOKEN) is required to serve the API", ErrInvalidConfig)
	}
	return nil
}

// Location часовой пояс ресторана (проверен в Validate)
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reservations.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Reservations.SweepInterval) * time.Second
}
