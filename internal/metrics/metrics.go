package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
	gormprom "gorm.io/plugin/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reports         *prometheus.CounterVec
	expenseWrites   *prometheus.CounterVec
}

var (
	once    sync.Once
	current *Metrics
)

// Default returns the process-wide collectors registered on the default registerer.
func Default() *Metrics {
	once.Do(func() {
		current = New(prometheus.DefaultRegisterer)
	})
	return current
}

// New registers a fresh set of collectors. Tests pass their own registry.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgo_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sgo_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgo_expense_reports_total",
			Help: "Expense reports generated by output format.",
		}, []string{"format"}),
		expenseWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sgo_expense_writes_total",
			Help: "Expense mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
	registerer.MustRegister(m.requests, m.requestDuration, m.reports, m.expenseWrites)
	return m
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ReportGenerated counts a report rendered as json, xlsx or pdf.
func (m *Metrics) ReportGenerated(format string) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues(format).Inc()
}

// ExpenseWrite counts an expense create, update or delete.
func (m *Metrics) ExpenseWrite(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.expenseWrites.WithLabelValues(operation, outcome).Inc()
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// InstrumentDB exports connection pool statistics for db.
func InstrumentDB(db *gorm.DB, dbName string) error {
	return db.Use(gormprom.New(gormprom.Config{
		DBName:          dbName,
		RefreshInterval: 15,
		StartServer:     false,
	}))
}
