package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Actions  *prometheus.CounterVec
	Expired  prometheus.Counter
}

// New builds a private registry so tests can create as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusmarket_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campusmarket_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusmarket_domain_actions_total",
			Help: "Domain actions (favorite.add, interest.accept, ...) by outcome.",
		}, []string{"action", "outcome"}),
		Expired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusmarket_items_expired_total",
			Help: "Listings moved to EXPIRED by the reconciliation pass.",
		}),
	}
	reg.MustRegister(
		m.Requests, m.Latency, m.Actions, m.Expired,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Action counts one domain action. Safe on a nil *Metrics.
func (m *Metrics) Action(action string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) AddExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.Expired.Add(float64(n))
}

// Middleware records request count and latency keyed by the matched route
// pattern, not the raw path, to keep label cardinality bounded. Errors are
// handed to the app's ErrorHandler here so the recorded status is the one
// the client gets.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		// fiber strings alias the request buffer; labels outlive the request
		method := utils.CopyString(c.Method())
		route := utils.CopyString(c.Route().Path)
		status := c.Response().StatusCode()
		m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.Latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return nil
	}
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
