// Package metrics exposes Prometheus counters for HTTP traffic and the clinic's
// booking and reminder activity.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bookingsTotal       *prometheus.CounterVec
	remindersTotal      prometheus.Counter
}

func NewCollector() *Collector {
	collector := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		bookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dentclinic_bookings_total",
				Help: "Appointment booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		remindersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dentclinic_reminders_created_total",
				Help: "Appointment reminder notifications created",
			},
		),
	}

	collector.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collector.httpRequestsTotal,
		collector.httpRequestDuration,
		collector.bookingsTotal,
		collector.remindersTotal,
	)
	return collector
}

// Middleware records every request under its route pattern, not the raw path.
func (collector *Collector) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		started := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		endpoint := unmatchedRoute
		if route := c.Route(); route != nil && route.Path != "" && route.Path != "/" {
			endpoint = route.Path
		} else if c.Path() == "/" {
			endpoint = "/"
		}

		collector.httpRequestsTotal.WithLabelValues(c.Method(), endpoint, strconv.Itoa(status)).Inc()
		collector.httpRequestDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(started).Seconds())
		return err
	}
}

func (collector *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(collector.registry, promhttp.HandlerOpts{}))
}

// RecordBooking counts a booking attempt; outcome is "booked", "conflict", "invalid" or "error".
func (collector *Collector) RecordBooking(outcome string) {
	collector.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (collector *Collector) RecordReminders(created int) {
	if created > 0 {
		collector.remindersTotal.Add(float64(created))
	}
}

func (collector *Collector) Registry() *prometheus.Registry {
	return collector.registry
}
