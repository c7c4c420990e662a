package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal     *prometheus.CounterVec
	processDuration  *prometheus.HistogramVec
	processInFlight  prometheus.Gauge
	stepFailures     *prometheus.CounterVec
	classifierSource *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archetype",
			Subsystem: "worker",
			Name:      "record_process_total",
			Help:      "Total processed survey records by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "archetype",
			Subsystem: "worker",
			Name:      "record_process_duration_seconds",
			Help:      "Survey record processing duration in seconds by status.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "archetype",
			Subsystem: "worker",
			Name:      "record_process_in_flight",
			Help:      "Number of survey records currently being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stepFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archetype",
			Subsystem: "worker",
			Name:      "record_step_failures_total",
			Help:      "Failed survey records by pipeline step.",
		},
		[]string{"service", "step"},
	)
	classifierSource := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "archetype",
			Subsystem: "worker",
			Name:      "classification_total",
			Help:      "Classifications by source (llm, fallback, rules).",
		},
		[]string{"service", "source"},
	)

	registry.MustRegister(processTotal, processDuration, processInFlight, stepFailures, classifierSource)

	return &WorkerMetrics{
		registry:         registry,
		service:          service,
		processTotal:     processTotal,
		processDuration:  processDuration,
		processInFlight:  processInFlight,
		stepFailures:     stepFailures,
		classifierSource: classifierSource,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRecord() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishRecord(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
		m.stepFailures.WithLabelValues(m.service, failedStep(err)).Inc()
	}

	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveClassification(source domain.ClassificationSource) {
	m.classifierSource.WithLabelValues(m.service, string(source)).Inc()
}

func failedStep(err error) string {
	var stepped interface{ StepName() string }
	if errors.As(err, &stepped) {
		return stepped.StepName()
	}
	return "unknown"
}
