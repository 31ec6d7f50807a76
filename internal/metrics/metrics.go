package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for the token lifecycle. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	InstallationsWritten *prometheus.CounterVec
	AuthorizationResults *prometheus.CounterVec
	WebhookEvents        *prometheus.CounterVec
	Refreshes            *prometheus.CounterVec
	Resolutions          *prometheus.CounterVec
	CorrelationConsumes  *prometheus.CounterVec
	ProviderCallDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		InstallationsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_installations_written_total",
			Help: "Installation records written, by trigger source",
		}, []string{"source"}),
		AuthorizationResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_authorization_callbacks_total",
			Help: "OAuth callbacks handled, by outcome",
		}, []string{"outcome"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_install_webhooks_total",
			Help: "Install webhook events, by outcome",
		}, []string{"outcome"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_token_refreshes_total",
			Help: "Token refresh attempts, by outcome",
		}, []string{"outcome"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_context_resolutions_total",
			Help: "Request context resolutions, by outcome",
		}, []string{"outcome"}),
		CorrelationConsumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_correlation_consumes_total",
			Help: "Authorization state lookups on callback, by hit or miss",
		}, []string{"result"}),
		ProviderCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_provider_call_duration_seconds",
			Help:    "Duration of calls to the provider token endpoints",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"call"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.InstallationsWritten,
			m.AuthorizationResults,
			m.WebhookEvents,
			m.Refreshes,
			m.Resolutions,
			m.CorrelationConsumes,
			m.ProviderCallDuration,
		)
	}
	return m
}

func (m *Metrics) IncInstallationWritten(source string) {
	if m == nil {
		return
	}
	m.InstallationsWritten.WithLabelValues(source).Inc()
}

func (m *Metrics) IncAuthorizationResult(outcome string) {
	if m == nil {
		return
	}
	m.AuthorizationResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncWebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncRefresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCorrelationConsume(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CorrelationConsumes.WithLabelValues(result).Inc()
}

// ObserveProviderCall records the time since start for the named call
func (m *Metrics) ObserveProviderCall(call string, start time.Time) {
	if m == nil {
		return
	}
	m.ProviderCallDuration.WithLabelValues(call).Observe(time.Since(start).Seconds())
}
