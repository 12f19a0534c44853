// Package metrics implementa ports.Metrics y las métricas HTTP con Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/Compras-api/internal/application/ports"
)

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus contadores de negocio y HTTP registrados en un registry propio.
type Prometheus struct {
	Registry *prometheus.Registry

	quotationsSent    *prometheus.CounterVec
	proposalsRecorded *prometheus.CounterVec
	analyses          *prometheus.CounterVec
	ordersIssued      *prometheus.CounterVec
	emailsFetched     prometheus.Counter
	emailsProcessed   *prometheus.CounterVec
	aiCreditsConsumed *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	httpInFlight      prometheus.Gauge
}

// New crea los collectors con el namespace dado y los registra junto a los de Go y proceso.
func New(namespace string) *Prometheus {
	reg := prometheus.NewRegistry()
	m := &Prometheus{
		Registry: reg,
		quotationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotation_emails_total",
			Help:      "Solicitudes de cotización enviadas a proveedores por resultado.",
		}, []string{"result"}),
		proposalsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_recorded_total",
			Help:      "Propuestas registradas por origen (MANUAL, EMAIL).",
		}, []string{"source"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Análisis comparativos calculados por recomendación.",
		}, []string{"recommendation"}),
		ordersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_orders_issued_total",
			Help:      "Órdenes de compra emitidas por modo de generación.",
		}, []string{"mode"}),
		emailsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbox_emails_fetched_total",
			Help:      "Correos descargados del buzón de compras.",
		}),
		emailsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbox_emails_processed_total",
			Help:      "Correos procesados por estado resultante.",
		}, []string{"status"}),
		aiCreditsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_credits_consumed_total",
			Help:      "Créditos de IA consumidos por operación.",
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "Latencia de las peticiones HTTP en milisegundos.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Peticiones HTTP en curso.",
		}),
	}
	mustRegister(reg,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.quotationsSent, m.proposalsRecorded, m.analyses, m.ordersIssued,
		m.emailsFetched, m.emailsProcessed, m.aiCreditsConsumed,
		m.httpRequests, m.httpDuration, m.httpInFlight,
	)
	return m
}

func mustRegister(reg prometheus.Registerer, cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			panic(fmt.Errorf("register metric: %w", err))
		}
	}
}

func (m *Prometheus) QuotationsSent(result string, n int) {
	m.quotationsSent.WithLabelValues(result).Add(float64(n))
}

func (m *Prometheus) ProposalRecorded(source string) {
	m.proposalsRecorded.WithLabelValues(source).Inc()
}

func (m *Prometheus) AnalysisComputed(recommendation string) {
	m.analyses.WithLabelValues(recommendation).Inc()
}

func (m *Prometheus) PurchaseOrdersIssued(mode string, n int) {
	m.ordersIssued.WithLabelValues(mode).Add(float64(n))
}

func (m *Prometheus) EmailsFetched(n int) {
	m.emailsFetched.Add(float64(n))
}

func (m *Prometheus) EmailProcessed(status string) {
	m.emailsProcessed.WithLabelValues(status).Inc()
}

func (m *Prometheus) AICreditsConsumed(operation string, n int) {
	m.aiCreditsConsumed.WithLabelValues(operation).Add(float64(n))
}

// ObserveHTTP registra una petición terminada. route es el patrón, no la URL, para acotar la cardinalidad.
func (m *Prometheus) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, fmt.Sprint(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(float64(elapsed) / float64(time.Millisecond))
}

// InFlight ajusta el gauge de peticiones en curso (+1 al entrar, -1 al salir).
func (m *Prometheus) InFlight(delta float64) {
	m.httpInFlight.Add(delta)
}
