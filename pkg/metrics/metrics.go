package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках
// в usecase передается nil и вызовы превращаются в no-op.
type Metrics struct {
	service string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBConnections   *prometheus.GaugeVec
	DBWaitCount     *prometheus.GaugeVec

	ReservationsCreated   *prometheus.CounterVec
	ReservationRejections *prometheus.CounterVec
	ReservationConflicts  *prometheus.CounterVec
	HoldsExpired          *prometheus.CounterVec
	SlotOccupancy         *prometheus.HistogramVec
	SettingsCacheRequests *prometheus.CounterVec
}

// New регистрирует метрики в глобальном регистре (для promhttp.Handler)
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном регистре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		service: serviceName,

		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),

		DBQueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "db_queries_total",
			Help: "Total number of database queries",
		}, []string{"service", "operation", "status"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections_wait_total",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		ReservationsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "Reservations created, by initial status",
		}, []string{"service", "status"}),

		ReservationRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_rejections_total",
			Help: "Reservation requests rejected, by reason",
		}, []string{"service", "reason"}),

		ReservationConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_write_conflicts_total",
			Help: "Serialization conflicts on reservation writes",
		}, []string{"service"}),

		HoldsExpired: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_holds_expired_total",
			Help: "Pending reservations cancelled by the expiry sweep",
		}, []string{"service"}),

		SlotOccupancy: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reservation_slot_occupancy_percent",
			Help:    "Occupancy of the booked slot right after a reservation is created",
			Buckets: []float64{10, 25, 50, 75, 90, 100},
		}, []string{"service"}),

		SettingsCacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "settings_cache_requests_total",
			Help: "Settings cache lookups, by result",
		}, []string{"service", "result"}),
	}
}

// ObserveHTTPRequest фиксирует обработанный HTTP запрос
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(m.service, method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.service, method, route).Observe(duration.Seconds())
}

// ObserveDBQuery фиксирует запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(m.service, operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(m.service, operation).Observe(duration.Seconds())
}

// SetDBPoolStats публикует состояние пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse, idle int, waitCount int64) {
	if m == nil {
		return
	}
	m.DBConnections.WithLabelValues(m.service, "open").Set(float64(open))
	m.DBConnections.WithLabelValues(m.service, "in_use").Set(float64(inUse))
	m.DBConnections.WithLabelValues(m.service, "idle").Set(float64(idle))
	m.DBWaitCount.WithLabelValues(m.service).Set(float64(waitCount))
}

func (m *Metrics) ObserveReservationCreated(status string) {
	if m == nil {
		return
	}
	m.ReservationsCreated.WithLabelValues(m.service, status).Inc()
}

func (m *Metrics) ObserveReservationRejected(reason string) {
	if m == nil {
		return
	}
	m.ReservationRejections.WithLabelValues(m.service, reason).Inc()
}

func (m *Metrics) ObserveWriteConflict() {
	if m == nil {
		return
	}
	m.ReservationConflicts.WithLabelValues(m.service).Inc()
}

func (m *Metrics) ObserveHoldsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.HoldsExpired.WithLabelValues(m.service).Add(float64(n))
}

// ObserveSlotOccupancy занятость слота в процентах (0-100)
func (m *Metrics) ObserveSlotOccupancy(percent float64) {
	if m == nil {
		return
	}
	m.SlotOccupancy.WithLabelValues(m.service).Observe(percent)
}

func (m *Metrics) ObserveSettingsCache(result string) {
	if m == nil {
		return
	}
	m.SettingsCacheRequests.WithLabelValues(m.service, result).Inc()
}
