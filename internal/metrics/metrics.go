// Package metrics exposes Prometheus instruments for the bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hungrybot"

// Metrics groups every instrument. A nil *Metrics is valid and records nothing.
type Metrics struct {
	MessagesRouted       *prometheus.CounterVec
	ConversationsStarted prometheus.Counter
	ConversationsEnded   *prometheus.CounterVec
	ActiveConversations  prometheus.Gauge
	Lookups              *prometheus.CounterVec
	LookupDuration       prometheus.Histogram
	SearchCache          *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers all instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers all instruments on reg and serves them from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MessagesRouted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_routed_total",
			Help:      "Inbound messages routed, by intent or conversation.",
		}, []string{"route"}),
		ConversationsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_started_total",
			Help:      "Food recommendation conversations started.",
		}),
		ConversationsEnded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_ended_total",
			Help:      "Conversations that reached a terminal state, by state.",
		}, []string{"state"}),
		ActiveConversations: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "conversations_active",
			Help:      "Conversations currently in progress.",
		}),
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_lookups_total",
			Help:      "Business searches, by result.",
		}, []string{"result"}),
		LookupDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "business_lookup_duration_seconds",
			Help:      "Latency of business searches.",
			Buckets:   prometheus.DefBuckets,
		}),
		SearchCache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_cache_requests_total",
			Help:      "Search cache lookups, by outcome.",
		}, []string{"outcome"}),
		gatherer: g,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RouteMessage counts a routed message.
func (m *Metrics) RouteMessage(route string) {
	if m == nil {
		return
	}
	m.MessagesRouted.WithLabelValues(route).Inc()
}

// ConversationStarted records a new conversation.
func (m *Metrics) ConversationStarted() {
	if m == nil {
		return
	}
	m.ConversationsStarted.Inc()
	m.ActiveConversations.Inc()
}

// ConversationEnded records a conversation reaching a terminal state.
func (m *Metrics) ConversationEnded(state string) {
	if m == nil {
		return
	}
	m.ConversationsEnded.WithLabelValues(state).Inc()
	m.ActiveConversations.Dec()
}

// ObserveLookup records a business search.
func (m *Metrics) ObserveLookup(found bool, took time.Duration) {
	if m == nil {
		return
	}
	result := "not_found"
	if found {
		result = "found"
	}
	m.Lookups.WithLabelValues(result).Inc()
	m.LookupDuration.Observe(took.Seconds())
}

// CacheOutcome counts a search cache hit, miss or error.
func (m *Metrics) CacheOutcome(outcome string) {
	if m == nil {
		return
	}
	m.SearchCache.WithLabelValues(outcome).Inc()
}
