package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Collector struct {
	reg *prometheus.Registry

	CasesAnalyzed   prometheus.Counter
	CaseErrors      prometheus.Counter
	AnalyzeDuration prometheus.Histogram

	FilesParsed   *prometheus.CounterVec // kind label: turdata|ruter|segment
	RecordsParsed prometheus.Counter
	Diagnostics   *prometheus.CounterVec // kind label: diagnostic kind

	CacheLookups *prometheus.CounterVec // result label: hit|miss

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		CasesAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "olex_cases_analyzed_total",
			Help: "Total case folders analyzed.",
		}),
		CaseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "olex_case_errors_total",
			Help: "Case analyses that failed before producing a report.",
		}),
		AnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "olex_analyze_duration_seconds",
			Help:    "Duration of discovery, parsing and validation of one case.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		FilesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "olex_files_parsed_total",
			Help: "Olex files parsed, by file kind.",
		}, []string{"kind"}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "olex_segment_records_total",
			Help: "Binary track records decoded.",
		}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "olex_diagnostics_total",
			Help: "Diagnostics recorded, by kind.",
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "olex_cache_lookups_total",
			Help: "Report and export cache lookups, by result.",
		}, []string{"result"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "olex_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "olex_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "olex_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "olex_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
	}

	reg.MustRegister(
		c.CasesAnalyzed, c.CaseErrors, c.AnalyzeDuration,
		c.FilesParsed, c.RecordsParsed, c.Diagnostics,
		c.CacheLookups,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
	)
	return c
}

// CaseAnalyzed records one finished analysis
func (c *Collector) CaseAnalyzed(d time.Duration, files map[string]int, records int, diagnostics map[string]int) {
	c.CasesAnalyzed.Inc()
	c.AnalyzeDuration.Observe(d.Seconds())
	for kind, n := range files {
		c.FilesParsed.WithLabelValues(kind).Add(float64(n))
	}
	c.RecordsParsed.Add(float64(records))
	for kind, n := range diagnostics {
		c.Diagnostics.WithLabelValues(kind).Add(float64(n))
	}
}

func (c *Collector) CaseFailed() { c.CaseErrors.Inc() }

func (c *Collector) CacheLookup(hit bool) {
	if hit {
		c.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	c.CacheLookups.WithLabelValues("miss").Inc()
}

// publisher metrics
func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }
func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
		return
	}
	c.NATSConnected.Set(0)
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("metrics server error")
		}
	}()
	logrus.WithField("addr", addr).Info("metrics listening")
	return srv
}
