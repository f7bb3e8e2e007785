package service

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor exposes the order-flow counters on the Prometheus registry.
type Monitor struct {
	ordersCreated     prometheus.Counter
	duplicateConfirms prometheus.Counter
	statusUpdates     *prometheus.CounterVec
	emails            *prometheus.CounterVec
	gatewayErrors     prometheus.Counter
	persistenceErrors prometheus.Counter
}

var (
	monitor     *Monitor
	monitorOnce sync.Once
)

// GetMonitor returns the process-wide monitor, registering the
// collectors on first use.
func GetMonitor() *Monitor {
	monitorOnce.Do(func() {
		monitor = &Monitor{
			ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "orders_created_total",
				Help:      "Orders persisted after successful payment.",
			}),
			duplicateConfirms: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "duplicate_confirmations_total",
				Help:      "Confirmation retries that matched an existing order ref.",
			}),
			statusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "status_updates_total",
				Help:      "Order status transitions applied.",
			}, []string{"status"}),
			emails: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "order_emails_total",
				Help:      "Notification email attempts by result.",
			}, []string{"result"}),
			gatewayErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "gateway_errors_total",
				Help:      "Payment gateway call failures.",
			}),
			persistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "smartblinds",
				Name:      "persistence_errors_total",
				Help:      "Database read/write failures.",
			}),
		}
		prometheus.MustRegister(
			monitor.ordersCreated,
			monitor.duplicateConfirms,
			monitor.statusUpdates,
			monitor.emails,
			monitor.gatewayErrors,
			monitor.persistenceErrors,
		)
	})
	return monitor
}

func (m *Monitor) RecordOrderCreated()        { m.ordersCreated.Inc() }
func (m *Monitor) RecordDuplicateConfirm()    { m.duplicateConfirms.Inc() }
func (m *Monitor) RecordStatusUpdate(s string) { m.statusUpdates.WithLabelValues(s).Inc() }
func (m *Monitor) RecordEmail(result string)  { m.emails.WithLabelValues(result).Inc() }
func (m *Monitor) RecordGatewayError()        { m.gatewayErrors.Inc() }
func (m *Monitor) RecordPersistenceError()    { m.persistenceErrors.Inc() }

// MetricsHandler serves the Prometheus scrape endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
