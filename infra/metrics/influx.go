package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/predsubmit/core/metrics"
	"github.com/kilianp07/predsubmit/infra/logger"
)

// InfluxSink writes inference events to an InfluxDB instance using the
// official client. Points are buffered and written on Flush.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger

	mu      sync.Mutex
	pending []*write.Point
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordInference buffers one point per model invocation.
func (s *InfluxSink) RecordInference(ev coremetrics.InferenceEvent) error {
	p := write.NewPointWithMeasurement("inference").
		AddTag("model", ev.Model).
		AddTag("status", status(ev.Err)).
		AddField("token", ev.Token).
		AddField("modes", ev.Modes).
		AddField("latency_ms", round3(float64(ev.Latency)/float64(time.Millisecond))).
		SetTime(ev.Time)
	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
	return nil
}

// RecordRun buffers the run summary.
func (s *InfluxSink) RecordRun(sum coremetrics.RunSummary) error {
	p := write.NewPointWithMeasurement("inference_run").
		AddTag("submission", sum.Submission).
		AddTag("split", sum.Split).
		AddTag("model", sum.Model).
		AddTag("status", status(sum.Err)).
		AddField("run_id", sum.RunID).
		AddField("tokens", sum.Tokens).
		AddField("predictions", sum.Predictions).
		AddField("duration_s", round3(sum.Duration.Seconds())).
		SetTime(sum.Time)
	s.mu.Lock()
	s.pending = append(s.pending, p)
	s.mu.Unlock()
	return nil
}

// Flush writes the buffered points.
func (s *InfluxSink) Flush() error {
	s.mu.Lock()
	pts := s.pending
	s.pending = nil
	s.mu.Unlock()
	if len(pts) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, pts...)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
