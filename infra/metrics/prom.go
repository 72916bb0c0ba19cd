package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/predsubmit/core/metrics"
)

// PromSink records inference metrics in a Prometheus registry. A batch run
// has no scrape endpoint, so Flush writes the registry to a textfile for the
// node exporter textfile collector.
type PromSink struct {
	reg        *prometheus.Registry
	textfile   string
	inferences *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	runTokens  *prometheus.GaugeVec
	runSeconds *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
}

// NewPromSink registers inference metrics on reg. A nil registry creates a
// private one. textfile may be empty to keep metrics in memory only.
func NewPromSink(textfile string, reg *prometheus.Registry) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &PromSink{
		reg:      reg,
		textfile: textfile,
		inferences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predsubmit_inferences_total",
			Help: "Total number of model invocations",
		}, []string{"model", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "predsubmit_inference_latency_seconds",
			Help:    "Time spent in the model for one token",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"model"}),
		runTokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "predsubmit_run_tokens",
			Help: "Number of tokens in the last run",
		}, []string{"submission", "split", "model"}),
		runSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "predsubmit_run_duration_seconds",
			Help: "Wall time of the last run",
		}, []string{"submission", "split", "model"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "predsubmit_run_last_timestamp_seconds",
			Help: "Unix time of the last run by outcome",
		}, []string{"submission", "status"}),
	}
	var err error
	if s.inferences, err = register(reg, s.inferences); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.runTokens, err = register(reg, s.runTokens); err != nil {
		return nil, err
	}
	if s.runSeconds, err = register(reg, s.runSeconds); err != nil {
		return nil, err
	}
	if s.lastRun, err = register(reg, s.lastRun); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Registry exposes the underlying registry.
func (s *PromSink) Registry() *prometheus.Registry { return s.reg }

// RecordInference counts the invocation and observes its latency.
func (s *PromSink) RecordInference(ev coremetrics.InferenceEvent) error {
	s.inferences.WithLabelValues(ev.Model, status(ev.Err)).Inc()
	s.latency.WithLabelValues(ev.Model).Observe(ev.Latency.Seconds())
	return nil
}

// RecordRun sets the run gauges.
func (s *PromSink) RecordRun(sum coremetrics.RunSummary) error {
	s.runTokens.WithLabelValues(sum.Submission, sum.Split, sum.Model).Set(float64(sum.Tokens))
	s.runSeconds.WithLabelValues(sum.Submission, sum.Split, sum.Model).Set(sum.Duration.Seconds())
	s.lastRun.WithLabelValues(sum.Submission, status(sum.Err)).Set(float64(sum.Time.Unix()))
	return nil
}

// Flush writes the registry to the textfile when one is configured.
func (s *PromSink) Flush() error {
	if s.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.textfile, s.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func status(errMsg string) string {
	if errMsg != "" {
		return "error"
	}
	return "ok"
}
