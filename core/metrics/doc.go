// Package metrics defines the sinks that observe an inference run. A sink
// receives one InferenceEvent per token and, when it implements RunRecorder,
// a RunSummary once the submission is written. Sinks are built from
// configuration through a registry; infra/metrics registers the nop,
// prometheus and influx implementations. Several configured sinks are
// combined with NewMultiSink.
package metrics
