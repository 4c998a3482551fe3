// Package metrics exports ingestion telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "geotech_ingest"

// PrometheusObserver records one sample per upload. It implements ingest.Observer.
type PrometheusObserver struct {
	uploads       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	uploadedBytes prometheus.Counter
}

// NewPrometheusObserver registers ingestion metrics on reg. Metrics already
// registered under the same name are reused.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Raw dataset uploads by outcome, archive action and pipeline status.",
	}, []string{"outcome", "archive", "pipeline"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_duration_seconds",
		Help:      "End-to-end latency of raw dataset uploads, pipeline trigger included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	uploadedBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative size of raw datasets written to object storage.",
	})

	var err error
	if uploads, err = register(reg, uploads); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if uploadedBytes, err = register(reg, uploadedBytes); err != nil {
		return nil, err
	}
	return &PrometheusObserver{uploads: uploads, duration: duration, uploadedBytes: uploadedBytes}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register ingest metric: %w", err)
	}
	return c, nil
}

// ObserveIngest records a finished upload attempt.
func (o *PrometheusObserver) ObserveIngest(outcome, archive, pipelineStatus string, sizeBytes int, d time.Duration) {
	if o == nil {
		return
	}
	o.uploads.WithLabelValues(outcome, archive, pipelineStatus).Inc()
	o.duration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == "ok" {
		o.uploadedBytes.Add(float64(sizeBytes))
	}
}
