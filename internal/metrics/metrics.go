package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa os coletores do serviço em um registry próprio
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	searches        *prometheus.CounterVec
	offersCollected *prometheus.CounterVec
	alertsChecked   *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
}

// New cria e registra os coletores
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "product_searches_total",
			Help: "Product searches by outcome (hit, empty, error)",
		}, []string{"outcome"}),
		offersCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "offers_collected_total",
			Help: "Offers recorded by source",
		}, []string{"source"}),
		alertsChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alerts_checked_total",
			Help: "Alert evaluations by result (notified, notify_failed, quiet, conflict, error)",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_cycle_duration_seconds",
			Help:    "Duration of a monitor cycle in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.requests, m.requestDuration, m.searches, m.offersCollected, m.alertsChecked, m.cycleDuration,
	)
	return m
}

// Handler expõe as métricas no formato do Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest registra uma requisição HTTP
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Search registra o resultado de uma busca
func (m *Metrics) Search(outcome string) {
	m.searches.WithLabelValues(outcome).Inc()
}

// OfferCollected registra uma oferta gravada
func (m *Metrics) OfferCollected(source string) {
	m.offersCollected.WithLabelValues(source).Inc()
}

// AlertChecked registra o resultado de uma avaliação de alerta
func (m *Metrics) AlertChecked(result string) {
	m.alertsChecked.WithLabelValues(result).Inc()
}

// ObserveCycle registra a duração de um ciclo do monitor
func (m *Metrics) ObserveCycle(d time.Duration) {
	m.cycleDuration.Observe(d.Seconds())
}
