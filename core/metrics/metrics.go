package metrics

import "time"

// InferenceEvent describes one model invocation.
type InferenceEvent struct {
	Model   string
	Token   string
	Modes   int
	Latency time.Duration
	// Err is empty when the model succeeded.
	Err  string
	Time time.Time
}

// RunSummary describes a finished inference run.
type RunSummary struct {
	RunID       string
	Submission  string
	Split       string
	Version     string
	Model       string
	Tokens      int
	Predictions int
	Duration    time.Duration
	// Err is empty when the run produced a submission.
	Err  string
	Time time.Time
}

// MetricsSink records model invocations.
type MetricsSink interface {
	RecordInference(ev InferenceEvent) error
}

// RunRecorder is implemented by sinks that record run summaries.
type RunRecorder interface {
	RecordRun(s RunSummary) error
}

// Flusher is implemented by sinks that buffer data until the run ends.
type Flusher interface {
	Flush() error
}

// Closer releases sink resources.
type Closer interface {
	Close() error
}

// NopSink implements every sink interface with no-op methods.
type NopSink struct{}

func (NopSink) RecordInference(InferenceEvent) error { return nil }
func (NopSink) RecordRun(RunSummary) error           { return nil }
func (NopSink) Flush() error                         { return nil }
func (NopSink) Close() error                         { return nil }

// Finish records the summary on sink, then flushes and closes it when it
// supports those operations.
func Finish(sink MetricsSink, s RunSummary) error {
	if rec, ok := sink.(RunRecorder); ok {
		if err := rec.RecordRun(s); err != nil {
			return err
		}
	}
	if f, ok := sink.(Flusher); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if c, ok := sink.(Closer); ok {
		return c.Close()
	}
	return nil
}
